// Package models содержит доменные структуры клиента:
// сессию пользователя, расходы, данные дашборда и записи чата.
package models

// SubscriptionActive — значение статуса подписки, открывающее доступ к функциям.
// Любое другое значение (например "pending") трактуется как отсутствие подписки.
const SubscriptionActive = "active"

// Session представляет клиентский снимок состояния пользователя.
// Снимок восстанавливается из постоянного хранилища при старте
// и является единственным источником данных для маршрутизации.
type Session struct {
	UserID             string `json:"user_id"`
	Email              string `json:"email"`
	SubscriptionStatus string `json:"subscription_status"`
	SetupCompleted     bool   `json:"setup_completed"`
	Token              string `json:"-"`
}

// Valid сообщает, заполнена ли сессия целиком.
// Частично заполненная сессия считается отсутствующей.
func (s Session) Valid() bool {
	return s.UserID != "" && s.Email != "" && s.SubscriptionStatus != "" && s.Token != ""
}

// Subscribed сообщает, активна ли подписка пользователя.
func (s Session) Subscribed() bool {
	return s.SubscriptionStatus == SubscriptionActive
}
