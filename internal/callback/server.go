// Package callback реализует локальный HTTP-сервер возврата с оплаты.
//
// Оплата происходит на странице провайдера вне приложения; провайдер
// возвращает браузер на origin_url, которым клиент объявляет этот сервер.
// Успешный возврат несёт session_id в строке запроса, отмена — нет.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
)

// Result — исход возврата с оплаты.
type Result struct {
	SessionID string
	Cancelled bool
}

// Server принимает редиректы /subscription/success и /subscription/cancel.
type Server struct {
	srv     *http.Server
	log     *slog.Logger
	addr    string
	results chan Result
}

// New создаёт сервер на указанном адресе.
func New(addr string, log *slog.Logger) *Server {
	s := &Server{
		log:     log,
		addr:    addr,
		results: make(chan Result, 1),
	}

	router := chi.NewRouter()
	router.Get("/subscription/success", s.handleSuccess)
	router.Get("/subscription/cancel", s.handleCancel)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// OriginURL возвращает origin для создания сессии оплаты.
func (s *Server) OriginURL() string {
	return "http://" + s.addr
}

// Start занимает порт и запускает сервер в фоне.
// Ошибка привязки (порт уже занят) возвращается сразу, до того как
// пользователю будет показана ссылка на оплату.
func (s *Server) Start() error {
	const op = "callback.Server.Start"

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		s.log.Info("callback server starting on", slog.String("address", s.addr))
		err := s.srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("callback server stopped", slog.Any("err", err))
		}
	}()
	return nil
}

// Wait блокируется до возврата с оплаты или отмены контекста.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-s.results:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Shutdown останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	s.log.Info("checkout success callback", slog.String("session_id", sessionID))
	s.deliver(Result{SessionID: sessionID})
	render.PlainText(w, r, "Payment received. You can return to the terminal.")
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.log.Info("checkout cancel callback")
	s.deliver(Result{Cancelled: true})
	render.PlainText(w, r, "Payment cancelled. You can return to the terminal.")
}

func (s *Server) deliver(res Result) {
	select {
	case s.results <- res:
	default:
	}
}
