// Package chat реализует контроллер экрана диалога с ассистентом.
//
// Реплика пользователя добавляется оптимистично — до ответа сети, чтобы
// задержка касалась только хода ассистента. Неудачный запрос фиксируется
// локальной репликой ассистента с признаком ошибки, а не теряется молча.
package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

const errReplyText = "Sorry, I encountered an error. Please try again."

// Service описывает операции чата API-клиента.
type Service interface {
	SendChat(ctx context.Context, message string) (string, error)
	ChatHistory(ctx context.Context) ([]models.HistoryItem, error)
}

// Controller владеет видимым диалогом и списком истории.
type Controller struct {
	log *slog.Logger
	svc Service
	run controllers.Runner

	mu       sync.Mutex
	messages []models.ChatMessage
	history  []models.HistoryItem
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service) *Controller {
	return &Controller{log: log, svc: svc}
}

// Send отправляет сообщение ассистенту.
// Повторная отправка во время выполнения игнорируется (ErrBusy).
func (c *Controller) Send(ctx context.Context, text string) error {
	const op = "controllers.chat.Send"

	if text == "" {
		return nil
	}

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	log := c.log.With(slog.String("op", op))

	c.append(models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	})

	reply, err := c.svc.SendChat(ctx, text)
	if !c.run.Valid(epoch) {
		log.Debug("stale chat response discarded")
		return nil
	}
	if err != nil {
		log.Error("chat request failed", sl.Err(err))
		c.append(models.ChatMessage{
			ID:        uuid.NewString(),
			Role:      models.RoleAssistant,
			Content:   errReplyText,
			Timestamp: time.Now(),
			IsError:   true,
		})
		return err
	}

	c.append(models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	})

	// Обновление боковой панели после удачного обмена; неудача
	// обновления не считается ошибкой отправки.
	if items, err := c.svc.ChatHistory(ctx); err == nil && c.run.Valid(epoch) {
		c.setHistory(items)
	}
	return nil
}

// FetchHistory обновляет список сохранённых обменов.
func (c *Controller) FetchHistory(ctx context.Context) error {
	const op = "controllers.chat.FetchHistory"

	items, err := c.svc.ChatHistory(ctx)
	if err != nil {
		c.log.Error("failed to fetch chat history", slog.String("op", op), sl.Err(err))
		return err
	}
	c.setHistory(items)
	return nil
}

// LoadHistoryItem заменяет видимый диалог сохранённой парой
// (вопрос, ответ) — без дописывания к текущему диалогу.
func (c *Controller) LoadHistoryItem(item models.HistoryItem) {
	ts := time.Now()
	if parsed, err := time.Parse(time.RFC3339, item.CreatedAt); err == nil {
		ts = parsed
	}
	c.mu.Lock()
	c.messages = []models.ChatMessage{
		{ID: uuid.NewString(), Role: models.RoleUser, Content: item.Message, Timestamp: ts},
		{ID: uuid.NewString(), Role: models.RoleAssistant, Content: item.Response, Timestamp: ts},
	}
	c.mu.Unlock()
}

// Clear очищает видимый диалог; история на сервере не затрагивается.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

// Messages возвращает копию видимого диалога.
func (c *Controller) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// History возвращает копию списка сохранённых обменов.
func (c *Controller) History() []models.HistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.HistoryItem, len(c.history))
	copy(out, c.history)
	return out
}

// Pending сообщает, выполняется ли отправка.
func (c *Controller) Pending() bool { return c.run.Pending() }

// Close отмечает уход с экрана: поздние ответы будут отброшены.
func (c *Controller) Close() { c.run.Invalidate() }

func (c *Controller) append(msg models.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

func (c *Controller) setHistory(items []models.HistoryItem) {
	c.mu.Lock()
	c.history = items
	c.mu.Unlock()
}
