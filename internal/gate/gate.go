// Package gate реализует детерминированную маршрутизацию клиента:
// чистую функцию от (сессия, запрошенный путь) к единственному доступному экрану.
//
// Порядок проверок строгий: оплата раньше настройки профиля, настройка
// раньше рабочих экранов. Ворота пересчитываются после каждой мутации
// сессии — без перезапуска приложения.
package gate

import (
	"strings"

	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// View — один из взаимоисключающих экранов верхнего уровня.
type View string

// Экраны приложения.
const (
	ViewAuth                View = "auth"
	ViewSubscription        View = "subscription"
	ViewSubscriptionSuccess View = "subscription/success"
	ViewSubscriptionCancel  View = "subscription/cancel"
	ViewSetup               View = "setup"
	ViewDashboard           View = "dashboard"
	ViewExpenses            View = "expenses"
	ViewRecommendations     View = "recommendations"
	ViewChat                View = "chat"
)

// State — каноническое состояние машины доступа.
type State string

// Состояния машины доступа.
const (
	StateUnauthenticated   State = "unauthenticated"
	StateNeedsSubscription State = "needs_subscription"
	StateNeedsSetup        State = "needs_setup"
	StateReady             State = "ready"
)

// StateOf возвращает состояние машины доступа для сессии.
func StateOf(sess *models.Session) State {
	switch {
	case sess == nil || !sess.Valid():
		return StateUnauthenticated
	case !sess.Subscribed():
		return StateNeedsSubscription
	case !sess.SetupCompleted:
		return StateNeedsSetup
	default:
		return StateReady
	}
}

// Resolve отображает сессию и запрошенный путь ровно в один экран.
//
// Без сессии доступен только экран входа. С сессией: неактивная подписка
// ведёт на экран подписки независимо от пути (кроме её собственных
// под-состояний success/cancel — страницы возврата с оплаты), затем
// незавершённая настройка ведёт на экран настройки, и только потом
// открываются рабочие экраны; корень по умолчанию — дашборд.
func Resolve(sess *models.Session, path string) View {
	path = normalize(path)

	switch StateOf(sess) {
	case StateUnauthenticated:
		return ViewAuth
	case StateNeedsSubscription:
		switch path {
		case "/subscription/success":
			return ViewSubscriptionSuccess
		case "/subscription/cancel":
			return ViewSubscriptionCancel
		default:
			return ViewSubscription
		}
	case StateNeedsSetup:
		return ViewSetup
	}

	switch path {
	case "/dashboard", "/", "/auth":
		return ViewDashboard
	case "/expenses":
		return ViewExpenses
	case "/recommendations":
		return ViewRecommendations
	case "/chat":
		return ViewChat
	case "/setup":
		return ViewSetup
	case "/subscription":
		return ViewSubscription
	case "/subscription/success":
		return ViewSubscriptionSuccess
	case "/subscription/cancel":
		return ViewSubscriptionCancel
	default:
		return ViewDashboard
	}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
