package models

import "github.com/shopspring/decimal"

// Expense представляет запись о расходе, возвращаемую сервером.
// Идентификатор и нормализованная сумма назначаются сервером.
type Expense struct {
	ExpenseID     string          `json:"expense_id"`
	Date          string          `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes"`
}

// FinancialProfile — финансовый профиль пользователя из экрана настройки.
// Балансы приходят указателями: их наличие в ответе сервера
// означает, что профиль существует.
type FinancialProfile struct {
	BankAccounts   []string `json:"bank_accounts"`
	CreditCards    []string `json:"credit_cards"`
	CashBalance    *float64 `json:"cash_balance"`
	SavingsBalance *float64 `json:"savings_balance"`
}

// Exists сообщает, существует ли профиль на сервере.
func (p FinancialProfile) Exists() bool {
	return p.CashBalance != nil || p.SavingsBalance != nil
}
