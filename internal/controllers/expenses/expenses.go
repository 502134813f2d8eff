// Package expenses реализует контроллер экрана расходов.
//
// Список загружается при входе на экран; добавление расхода перечитывает
// список целиком — идентификатор и нормализованную сумму назначает сервер.
// Итог и среднее всегда считаются по текущему списку.
package expenses

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/financeflow-client/internal/api"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// Categories — предлагаемые категории расходов.
var Categories = []string{
	"Food & Dining", "Transportation", "Shopping", "Entertainment",
	"Bills & Utilities", "Healthcare", "Travel", "Education",
	"Personal Care", "Other",
}

// PaymentMethods — предлагаемые способы оплаты.
var PaymentMethods = []string{
	"Credit Card", "Debit Card", "Cash", "Bank Transfer",
	"Mobile Payment", "Check",
}

// Form — форма добавления расхода; сумма вводится строкой.
type Form struct {
	Date          string
	Category      string
	Amount        string
	PaymentMethod string
	Notes         string
}

// Service описывает операции расходов API-клиента.
type Service interface {
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	AddExpense(ctx context.Context, req api.ExpenseRequest) error
	UploadStatement(ctx context.Context, filename string, file io.Reader) (string, error)
	ExportExpenses(ctx context.Context) (string, error)
}

// Controller обрабатывает список, добавление, загрузку выписки и экспорт.
type Controller struct {
	log      *slog.Logger
	svc      Service
	validate *validator.Validate
	run      controllers.Runner

	mu       sync.Mutex
	expenses []models.Expense
	loading  bool
	errMsg   string
	success  string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service) *Controller {
	return &Controller{
		log:      log,
		svc:      svc,
		validate: validator.New(),
	}
}

// Fetch загружает список расходов.
func (c *Controller) Fetch(ctx context.Context) error {
	const op = "controllers.expenses.Fetch"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	list, err := c.svc.ListExpenses(ctx)

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	if !c.run.Valid(epoch) {
		c.log.Debug("stale expense list discarded", slog.String("op", op))
		return nil
	}
	if err != nil {
		c.log.Error("failed to fetch expenses", slog.String("op", op), sl.Err(err))
		c.setMessages(err.Error(), "")
		return err
	}

	c.mu.Lock()
	c.expenses = list
	c.mu.Unlock()
	return nil
}

// Add добавляет расход и перечитывает список.
func (c *Controller) Add(ctx context.Context, form Form) error {
	const op = "controllers.expenses.Add"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}

	c.setMessages("", "")
	log := c.log.With(slog.String("op", op))

	amount, err := strconv.ParseFloat(form.Amount, 64)
	if err != nil {
		c.run.Done()
		log.Error("invalid amount", sl.Err(err))
		c.setMessages("amount must be a number greater than zero", "")
		return err
	}

	req := api.ExpenseRequest{
		Date:          form.Date,
		Category:      form.Category,
		Amount:        amount,
		PaymentMethod: form.PaymentMethod,
		Notes:         form.Notes,
	}
	if err := c.validate.Struct(req); err != nil {
		c.run.Done()
		log.Error("validation failed", sl.Err(err))
		c.setMessages("date, category, payment method and a positive amount are required", "")
		return err
	}

	err = c.svc.AddExpense(ctx, req)
	stale := !c.run.Valid(epoch)
	c.run.Done()
	if stale {
		log.Debug("stale add-expense response discarded")
		return nil
	}
	if err != nil {
		log.Error("failed to add expense", sl.Err(err))
		c.setMessages(err.Error(), "")
		return err
	}

	log.Info("expense added")
	c.setMessages("", "Expense added successfully!")
	return c.Fetch(ctx)
}

// Upload загружает файл выписки и перечитывает список.
func (c *Controller) Upload(ctx context.Context, filename string, file io.Reader) error {
	const op = "controllers.expenses.Upload"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}

	c.setMessages("", "")
	log := c.log.With(slog.String("op", op))

	message, err := c.svc.UploadStatement(ctx, filename, file)
	stale := !c.run.Valid(epoch)
	c.run.Done()
	if stale {
		log.Debug("stale upload response discarded")
		return nil
	}
	if err != nil {
		log.Error("failed to upload statement", sl.Err(err))
		c.setMessages(err.Error(), "")
		return err
	}

	log.Info("statement uploaded")
	c.setMessages("", message)
	return c.Fetch(ctx)
}

// Export возвращает расходы в виде CSV-текста.
func (c *Controller) Export(ctx context.Context) (string, error) {
	const op = "controllers.expenses.Export"

	csvData, err := c.svc.ExportExpenses(ctx)
	if err != nil {
		c.log.Error("failed to export expenses", slog.String("op", op), sl.Err(err))
		c.setMessages(err.Error(), "")
		return "", err
	}
	return csvData, nil
}

// Expenses возвращает копию текущего списка.
func (c *Controller) Expenses() []models.Expense {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]models.Expense, len(c.expenses))
	copy(list, c.expenses)
	return list
}

// Total — сумма по текущему списку, округлённая до двух знаков.
func (c *Controller) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return total(c.expenses)
}

// Average — среднее по текущему списку, округлённое до двух знаков.
// Для пустого списка среднее равно нулю, а не делению на ноль.
func (c *Controller) Average() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.expenses) == 0 {
		return decimal.Zero.Round(2)
	}
	count := decimal.NewFromInt(int64(len(c.expenses)))
	return total(c.expenses).Div(count).Round(2)
}

// Loading сообщает, загружается ли список.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Pending сообщает, выполняется ли операция.
func (c *Controller) Pending() bool { return c.run.Pending() }

// Close отмечает уход с экрана: поздние ответы будут отброшены.
func (c *Controller) Close() { c.run.Invalidate() }

// Error возвращает текст последней ошибки.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Success возвращает текст последнего успешного сообщения.
func (c *Controller) Success() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success
}

func (c *Controller) setMessages(errMsg, success string) {
	c.mu.Lock()
	c.errMsg = errMsg
	c.success = success
	c.mu.Unlock()
}

func total(expenses []models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum.Round(2)
}
