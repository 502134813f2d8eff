// Package auth реализует контроллер экрана входа.
//
// Вход и регистрация — два под-режима одного обработчика: выполняется
// валидация учётных данных, вызов API и создание сессии из ответа
// сервера ровно с теми значениями подписки и настройки, что он вернул.
package auth

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/financeflow-client/internal/api"
	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// Mode — под-режим обработчика.
type Mode string

// Под-режимы экрана входа.
const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// Service описывает операции аутентификации API-клиента.
type Service interface {
	Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
	Signup(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error)
}

// Sessions описывает создание сессии после успешной аутентификации.
type Sessions interface {
	Set(sess models.Session) error
}

// Controller обрабатывает отправку формы входа/регистрации.
type Controller struct {
	log      *slog.Logger
	svc      Service
	sessions Sessions
	validate *validator.Validate
	run      controllers.Runner

	mu      sync.Mutex
	errMsg  string
	success string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service, sessions Sessions) *Controller {
	return &Controller{
		log:      log,
		svc:      svc,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Submit выполняет вход или регистрацию в зависимости от режима.
// Повторная отправка во время выполнения игнорируется (ErrBusy).
func (c *Controller) Submit(ctx context.Context, mode Mode, email, password string) error {
	const op = "controllers.auth.Submit"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	c.setMessages("", "")

	log := c.log.With(slog.String("op", op), slog.String("mode", string(mode)))

	creds := api.Credentials{Email: email, Password: password}
	if err := c.validate.Struct(creds); err != nil {
		log.Error("validation failed", sl.Err(err))
		c.setMessages("enter a valid email and a password of at least 6 characters", "")
		return err
	}

	var resp *api.AuthResponse
	switch mode {
	case ModeSignup:
		resp, err = c.svc.Signup(ctx, creds)
	default:
		resp, err = c.svc.Login(ctx, creds)
	}

	if !c.run.Valid(epoch) {
		log.Debug("stale auth response discarded")
		return nil
	}
	if err != nil {
		log.Error("authentication failed", sl.Err(err))
		c.setMessages(err.Error(), "")
		return err
	}

	sess := models.Session{
		UserID:             resp.UserID,
		Email:              email,
		SubscriptionStatus: resp.SubscriptionStatus,
		SetupCompleted:     resp.SetupCompleted,
		Token:              resp.Token,
	}
	if err := c.sessions.Set(sess); err != nil {
		c.setMessages("failed to save session", "")
		return err
	}

	log.Info("authentication success", slog.String("user_id", resp.UserID))
	c.setMessages("", resp.Message)
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
