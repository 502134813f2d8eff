package models

import "time"

// Роли реплик в диалоге с ассистентом.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage — одна реплика локально отображаемого диалога.
// Записи неизменяемы: реплика пользователя добавляется оптимистично
// до ответа сети, ошибка ответа фиксируется отдельной репликой ассистента.
type ChatMessage struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
	IsError   bool
}

// HistoryItem — сохранённая на сервере пара (вопрос, ответ).
type HistoryItem struct {
	ChatID    string `json:"chat_id"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}
