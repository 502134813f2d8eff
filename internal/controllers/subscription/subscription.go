// Package subscription реализует контроллер экрана подписки.
//
// Subscribe запрашивает у сервера сессию оплаты и возвращает URL страницы
// провайдера — переход на неё жёсткий, оплата происходит вне приложения.
// ConfirmPayment опрашивает статус по session_id из возврата; статус
// "paid" оптимистично переводит сохранённую подписку в active до
// следующего полного обновления профиля.
package subscription

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/financeflow-client/internal/config"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
)

const statusPaid = "paid"

// Service описывает операции оплаты API-клиента.
type Service interface {
	CreateCheckout(ctx context.Context, packageID, originURL string) (string, error)
	CheckoutStatus(ctx context.Context, sessionID string) (string, error)
}

// Sessions описывает оптимистичную отметку активной подписки.
type Sessions interface {
	MarkSubscriptionActive() error
}

// Controller обрабатывает оформление подписки и подтверждение оплаты.
type Controller struct {
	log      *slog.Logger
	svc      Service
	sessions Sessions
	cfg      config.Checkout
	run      controllers.Runner

	mu       sync.Mutex
	checking bool
	errMsg   string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service, sessions Sessions, cfg config.Checkout) *Controller {
	return &Controller{
		log:      log,
		svc:      svc,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Subscribe создаёт сессию оплаты и возвращает URL для перехода.
// Повторная отправка во время выполнения игнорируется (ErrBusy).
func (c *Controller) Subscribe(ctx context.Context, originURL string) (string, error) {
	const op = "controllers.subscription.Subscribe"

	epoch, err := c.run.Begin()
	if err != nil {
		return "", err
	}
	defer c.run.Done()

	c.setError("")
	log := c.log.With(slog.String("op", op))

	url, err := c.svc.CreateCheckout(ctx, c.cfg.PackageID, originURL)
	if !c.run.Valid(epoch) {
		log.Debug("stale checkout response discarded")
		return "", nil
	}
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		c.setError(err.Error())
		return "", err
	}

	log.Info("checkout session created")
	return url, nil
}

// ConfirmPayment опрашивает статус оплаты до подтверждения или исчерпания
// попыток. Темп опроса задаёт лимитер. Возвращает true, если оплата
// подтверждена и сессия обновлена.
func (c *Controller) ConfirmPayment(ctx context.Context, sessionID string) (bool, error) {
	const op = "controllers.subscription.ConfirmPayment"
	log := c.log.With(slog.String("op", op), slog.String("session_id", sessionID))

	if sessionID == "" {
		return false, nil
	}

	c.setChecking(true)
	defer c.setChecking(false)

	limiter := rate.NewLimiter(rate.Every(c.cfg.PollInterval), 1)
	var lastErr error
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return false, err
		}

		status, err := c.svc.CheckoutStatus(ctx, sessionID)
		if err != nil {
			log.Error("failed to check payment status", sl.Err(err))
			lastErr = err
			continue
		}
		if status == statusPaid {
			if err := c.sessions.MarkSubscriptionActive(); err != nil {
				return false, err
			}
			log.Info("payment confirmed, subscription active")
			return true, nil
		}
		log.Info("payment not confirmed yet", slog.String("status", status))
	}
	return false, lastErr
}

// ConfirmDelay — пауза перед переходом к настройке после подтверждения,
// чтобы пользователь успел прочитать сообщение об успехе.
func (c *Controller) ConfirmDelay() time.Duration {
	return c.cfg.ConfirmDelay
}

// Checking сообщает, идёт ли сейчас проверка оплаты.
func (c *Controller) Checking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checking
}

// Pending сообщает, выполняется ли оформление подписки.
func (c *Controller) Pending() bool { return c.run.Pending() }

// Close отмечает уход с экрана: поздние ответы будут отброшены.
func (c *Controller) Close() { c.run.Invalidate() }

// Error возвращает текст последней ошибки.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}

func (c *Controller) setChecking(v bool) {
	c.mu.Lock()
	c.checking = v
	c.mu.Unlock()
}
