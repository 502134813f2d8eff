package api

import "github.com/magabrotheeeer/financeflow-client/internal/models"

// Credentials — учётные данные для входа и регистрации.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse — ответ сервера на вход или регистрацию.
// Поля подписки и настройки переносятся в сессию ровно как пришли.
type AuthResponse struct {
	Token              string `json:"token"`
	UserID             string `json:"user_id"`
	SubscriptionStatus string `json:"subscription_status"`
	SetupCompleted     bool   `json:"setup_completed"`
	Message            string `json:"message"`
}

// ExpenseRequest — тело запроса на добавление расхода.
type ExpenseRequest struct {
	Date          string  `json:"date" validate:"required"`
	Category      string  `json:"category" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	Notes         string  `json:"notes"`
}

// SetupRequest — тело запроса на заполнение финансового профиля.
type SetupRequest struct {
	BankAccounts   []string `json:"bank_accounts"`
	CreditCards    []string `json:"credit_cards"`
	CashBalance    float64  `json:"cash_balance"`
	SavingsBalance float64  `json:"savings_balance"`
}

type expensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
}

type historyResponse struct {
	History []models.HistoryItem `json:"history"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type recommendationsResponse struct {
	Recommendations string `json:"recommendations"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type exportResponse struct {
	CSVData string `json:"csv_data"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type statusResponse struct {
	PaymentStatus string `json:"payment_status"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}
