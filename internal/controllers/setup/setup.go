// Package setup реализует контроллер экрана финансового профиля.
//
// Пользователь отмечает банки и эмитентов карт (каждая отметка независима)
// и вводит два баланса. Пустые и нечисловые балансы приводятся к нулю,
// а не отклоняются. Успешная отправка монотонно поднимает флаг
// завершённой настройки — дашборд становится доступен без перезапуска.
package setup

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/magabrotheeeer/financeflow-client/internal/api"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
)

// BankOptions — предлагаемые банки.
var BankOptions = []string{
	"Chase", "Bank of America", "Wells Fargo", "Citibank", "U.S. Bank",
	"PNC Bank", "Capital One", "TD Bank", "Truist", "Goldman Sachs",
}

// CreditCardOptions — предлагаемые эмитенты карт.
var CreditCardOptions = []string{
	"American Express", "Visa", "Mastercard", "Discover", "Capital One",
	"Chase", "Citi", "Bank of America", "Wells Fargo", "US Bank",
}

// Service описывает отправку профиля API-клиенту.
type Service interface {
	SubmitSetup(ctx context.Context, req api.SetupRequest) error
}

// Sessions описывает отметку завершённой настройки в сессии.
type Sessions interface {
	MarkSetupCompleted() error
}

// Controller обрабатывает форму финансового профиля.
type Controller struct {
	log      *slog.Logger
	svc      Service
	sessions Sessions
	run      controllers.Runner

	mu             sync.Mutex
	bankAccounts   map[string]bool
	creditCards    map[string]bool
	cashBalance    string
	savingsBalance string
	errMsg         string
	success        string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service, sessions Sessions) *Controller {
	return &Controller{
		log:          log,
		svc:          svc,
		sessions:     sessions,
		bankAccounts: make(map[string]bool),
		creditCards:  make(map[string]bool),
	}
}

// ToggleBank переключает отметку банка.
func (c *Controller) ToggleBank(name string) {
	c.mu.Lock()
	c.bankAccounts[name] = !c.bankAccounts[name]
	c.mu.Unlock()
}

// ToggleCreditCard переключает отметку эмитента карты.
func (c *Controller) ToggleCreditCard(name string) {
	c.mu.Lock()
	c.creditCards[name] = !c.creditCards[name]
	c.mu.Unlock()
}

// SetBalances сохраняет введённые балансы как есть; приведение к числу
// происходит при отправке.
func (c *Controller) SetBalances(cash, savings string) {
	c.mu.Lock()
	c.cashBalance = cash
	c.savingsBalance = savings
	c.mu.Unlock()
}

// Submit отправляет профиль и поднимает флаг завершённой настройки.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	req := api.SetupRequest{
		BankAccounts:   selected(c.bankAccounts),
		CreditCards:    selected(c.creditCards),
		CashBalance:    coerceBalance(c.cashBalance),
		SavingsBalance: coerceBalance(c.savingsBalance),
	}
	c.mu.Unlock()
	return c.submit(ctx, req)
}

// Skip — явный пропуск настройки. Семантически это пустой профиль
// с нулевыми балансами: сервер поднимает флаг, и флаг никогда
// не расходится с действительностью.
func (c *Controller) Skip(ctx context.Context) error {
	return c.submit(ctx, api.SetupRequest{
		BankAccounts: []string{},
		CreditCards:  []string{},
	})
}

func (c *Controller) submit(ctx context.Context, req api.SetupRequest) error {
	const op = "controllers.setup.submit"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	c.setMessages("", "")
	log := c.log.With(slog.String("op", op))

	err = c.svc.SubmitSetup(ctx, req)
	if !c.run.Valid(epoch) {
		log.Debug("stale setup response discarded")
		return nil
	}
	if err != nil {
		log.Error("setup failed", sl.Err(err))
		c.setMessages(err.Error(), "")
		return err
	}

	if err := c.sessions.MarkSetupCompleted(); err != nil {
		c.setMessages("failed to save session", "")
		return err
	}

	log.Info("setup completed")
	c.setMessages("", "Setup completed successfully!")
	return nil
}

// Pending сообщает, выполняется ли отправка.
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

func selected(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name, on := range set {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// coerceBalance приводит ввод к числу; пустое или нечисловое значение — ноль.
func coerceBalance(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
