// Package recommendations реализует контроллер экрана рекомендаций.
//
// Генерация закрыта проверкой полноты профиля: без балансов запрос
// отклоняется локально с подсказкой, без лишнего обращения к серверу.
package recommendations

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

const msgNoProfile = "Please complete your financial profile first to get personalized recommendations."

// ErrNoProfile возвращается при попытке генерации без финансового профиля.
var ErrNoProfile = errors.New("financial profile is missing")

// Service описывает операции рекомендаций API-клиента.
type Service interface {
	GetSetup(ctx context.Context) (*models.FinancialProfile, error)
	Recommendations(ctx context.Context) (string, error)
}

// Controller обрабатывает проверку профиля и генерацию рекомендаций.
type Controller struct {
	log *slog.Logger
	svc Service
	run controllers.Runner

	mu         sync.Mutex
	hasProfile bool
	checked    bool
	text       string
	errMsg     string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service) *Controller {
	return &Controller{log: log, svc: svc}
}

// CheckProfile выясняет боковым чтением настроек, существует ли профиль.
// Ответ, пришедший после ухода с экрана, отбрасывается.
func (c *Controller) CheckProfile(ctx context.Context) {
	const op = "controllers.recommendations.CheckProfile"

	epoch, err := c.run.Begin()
	if err != nil {
		return
	}
	defer c.run.Done()

	profile, err := c.svc.GetSetup(ctx)
	if !c.run.Valid(epoch) {
		c.log.Debug("stale profile check discarded", slog.String("op", op))
		return
	}
	hasProfile := err == nil && profile != nil && profile.Exists()
	if err != nil {
		c.log.Error("failed to check financial profile", slog.String("op", op), sl.Err(err))
	}

	c.mu.Lock()
	c.hasProfile = hasProfile
	c.checked = true
	c.mu.Unlock()
}

// Generate запрашивает рекомендации. Без профиля запрос отклоняется
// локально с подсказкой — сетевой вызов не выполняется.
func (c *Controller) Generate(ctx context.Context) error {
	const op = "controllers.recommendations.Generate"
	log := c.log.With(slog.String("op", op))

	c.mu.Lock()
	hasProfile := c.hasProfile
	c.mu.Unlock()
	if !hasProfile {
		log.Info("recommendations rejected: no financial profile")
		c.setState("", msgNoProfile)
		return ErrNoProfile
	}

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	c.setState("", "")

	text, err := c.svc.Recommendations(ctx)
	if !c.run.Valid(epoch) {
		log.Debug("stale recommendations discarded")
		return nil
	}
	if err != nil {
		log.Error("failed to get recommendations", sl.Err(err))
		c.setState("", err.Error())
		return err
	}

	log.Info("recommendations generated")
	c.setState(text, "")
	return nil
}

// HasProfile сообщает результат последней проверки профиля.
func (c *Controller) HasProfile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasProfile
}

// Text возвращает сгенерированные рекомендации.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Pending сообщает, выполняется ли генерация.
func (c *Controller) Pending() bool { return c.run.Pending() }

// Close отмечает уход с экрана: поздние ответы будут отброшены.
func (c *Controller) Close() { c.run.Invalidate() }

// Error возвращает текст последней ошибки.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller) setState(text, errMsg string) {
	c.mu.Lock()
	c.text = text
	c.errMsg = errMsg
	c.mu.Unlock()
}
