package session

import (
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// Manager владеет текущей сессией на время жизни процесса.
// Все мутации проходят через него: он сохраняет снимок в Store
// и уведомляет подписчиков, чтобы маршрутизация пересчиталась.
//
// Флаги подписки и настройки монотонны: методы Mark* только улучшают
// состояние, откатить его может лишь новый вход или очистка.
type Manager struct {
	mu    sync.RWMutex
	store *Store
	sess  *models.Session
	log   *slog.Logger

	subsMu  sync.Mutex
	subs    map[int]func(*models.Session)
	nextSub int
}

// NewManager создаёт менеджер и восстанавливает сессию из хранилища.
func NewManager(store *Store, log *slog.Logger) *Manager {
	m := &Manager{
		store: store,
		log:   log,
		subs:  make(map[int]func(*models.Session)),
	}
	if sess, ok := store.Load(); ok {
		m.sess = sess
		log.Info("session restored", slog.String("user_id", sess.UserID))
	}
	return m
}

// Current возвращает копию текущей сессии или nil, если её нет.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil
	}
	copied := *m.sess
	return &copied
}

// Token реализует источник bearer-токена для API-клиента.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return ""
	}
	return m.sess.Token
}

// Set заменяет сессию целиком значениями, полученными от сервера,
// ровно как они пришли, без клиентских умолчаний.
func (m *Manager) Set(sess models.Session) error {
	const op = "session.Manager.Set"
	m.mu.Lock()
	m.sess = &sess
	err := m.store.Save(sess)
	m.mu.Unlock()
	if err != nil {
		m.log.Error("failed to persist session", slog.String("op", op), slog.Any("err", err))
		return err
	}
	m.notify()
	return nil
}

// MarkSetupCompleted монотонно выставляет флаг завершённой настройки.
func (m *Manager) MarkSetupCompleted() error {
	return m.mutate(func(s *models.Session) bool {
		if s.SetupCompleted {
			return false
		}
		s.SetupCompleted = true
		return true
	})
}

// MarkSubscriptionActive монотонно переводит подписку в active.
// Вызывается после подтверждённой оплаты, до следующего полного
// обновления профиля с сервера.
func (m *Manager) MarkSubscriptionActive() error {
	return m.mutate(func(s *models.Session) bool {
		if s.Subscribed() {
			return false
		}
		s.SubscriptionStatus = models.SubscriptionActive
		return true
	})
}

// Clear уничтожает сессию в памяти и в хранилище.
// Вызывается при выходе и при отклонении токена сервером.
func (m *Manager) Clear() error {
	const op = "session.Manager.Clear"
	m.mu.Lock()
	hadSession := m.sess != nil
	m.sess = nil
	err := m.store.Clear()
	m.mu.Unlock()
	if err != nil {
		m.log.Error("failed to clear session", slog.String("op", op), slog.Any("err", err))
		return err
	}
	if hadSession {
		m.notify()
	}
	return nil
}

// Subscribe регистрирует наблюдателя изменений сессии и возвращает
// функцию отписки. Наблюдатель получает копию снимка или nil.
func (m *Manager) Subscribe(fn func(*models.Session)) func() {
	m.subsMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subsMu.Unlock()
	return func() {
		m.subsMu.Lock()
		delete(m.subs, id)
		m.subsMu.Unlock()
	}
}

func (m *Manager) mutate(apply func(*models.Session) bool) error {
	const op = "session.Manager.mutate"
	m.mu.Lock()
	if m.sess == nil {
		m.mu.Unlock()
		return nil
	}
	if !apply(m.sess) {
		m.mu.Unlock()
		return nil
	}
	err := m.store.Save(*m.sess)
	m.mu.Unlock()
	if err != nil {
		m.log.Error("failed to persist session", slog.String("op", op), slog.Any("err", err))
		return err
	}
	m.notify()
	return nil
}

func (m *Manager) notify() {
	sess := m.Current()
	m.subsMu.Lock()
	fns := make([]func(*models.Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()
	for _, fn := range fns {
		fn(sess)
	}
}
