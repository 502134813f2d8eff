package api

import "errors"

// Kind классифицирует ошибку API-клиента.
type Kind int

// Классы ошибок.
const (
	// KindNetwork — запрос не дошёл до сервера или ответ не разобран.
	KindNetwork Kind = iota + 1
	// KindApplication — сервер вернул структурированный отказ.
	KindApplication
	// KindStaleCredential — сервер отклонил токен; сессия подлежит сбросу.
	KindStaleCredential
)

// Error — единый вид отказа, который получают контроллеры.
// Message пригоден для показа пользователю: берётся из поля detail
// ответа сервера, иначе подставляется общий текст.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsStaleCredential сообщает, вызвана ли ошибка отклонением токена.
func IsStaleCredential(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindStaleCredential
}

// IsNetwork сообщает, является ли ошибка сетевой (повторяемой).
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}
