// Package session содержит постоянное хранилище сессии и её
// in-memory менеджер — единственный источник данных для маршрутизации.
//
// Хранилище держит токен и JSON-снимок пользователя под двумя отдельными
// ключами; сессия считается существующей только при наличии обоих.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

const (
	tokenKey    = "token"
	userDataKey = "userdata.json"
)

// Store — файловое хранилище сессии, переживающее перезапуски клиента.
// Запись атомарна: значение пишется во временный файл и переименовывается.
type Store struct {
	dir string
}

// NewStore создаёт хранилище в каталоге dir, создавая его при необходимости.
func NewStore(dir string) (*Store, error) {
	const op = "session.NewStore"
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir}, nil
}

// Load восстанавливает сессию из хранилища.
// Любая неполнота или порча данных — отсутствующая сессия, не ошибка:
// повреждённая запись не должна ронять запуск.
func (s *Store) Load() (*models.Session, bool) {
	token, err := os.ReadFile(filepath.Join(s.dir, tokenKey))
	if err != nil || len(token) == 0 {
		return nil, false
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, userDataKey))
	if err != nil {
		return nil, false
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false
	}
	sess.Token = string(token)
	if !sess.Valid() {
		return nil, false
	}
	if tokenExpired(sess.Token) {
		return nil, false
	}
	return &sess, true
}

// Save сохраняет сессию целиком: сначала снимок пользователя, затем токен.
func (s *Store) Save(sess models.Session) error {
	const op = "session.Store.Save"
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeAtomic(userDataKey, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.writeAtomic(tokenKey, []byte(sess.Token)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет оба ключа; отсутствие файлов ошибкой не считается.
func (s *Store) Clear() error {
	const op = "session.Store.Clear"
	for _, key := range []string{tokenKey, userDataKey} {
		if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Store) writeAtomic(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, filepath.Join(s.dir, key))
}

// tokenExpired проверяет exp-клейм без верификации подписи.
// Токен для клиента непрозрачен: если клейм не читается, токен
// считается живым и его отклонит сервер при первом запросе.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
