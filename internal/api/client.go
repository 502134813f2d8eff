// Package api реализует клиент REST-бэкенда FinanceFlow.
//
// Клиент подставляет bearer-токен в каждый запрос и нормализует любой
// исход в типизированную ошибку Error: контроллеры не видят сырых
// исключений транспорта. Отклонение токена — сквозной сигнал: клиент
// сообщает о нём через колбэк OnUnauthorized, а не через каждый
// контроллер по отдельности.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/financeflow-client/internal/config"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
)

// Тексты общих ошибок, показываемые пользователю без изменений.
const (
	msgNetworkFailure = "cannot reach the server, check your connection and try again"
	msgBadPayload     = "unexpected response from server"
	msgGenericFailure = "request failed"
)

// TokenSource отдаёт текущий bearer-токен; пустая строка — токена нет.
type TokenSource interface {
	Token() string
}

// Client — клиент REST API FinanceFlow.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	log            *slog.Logger
	onUnauthorized func()
}

// New создаёт клиент с таймаутом и лимитером запросов из конфига.
func New(cfg config.Backend, tokens TokenSource, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/api",
		httpClient: &http.Client{Timeout: cfg.TimeoutHTTP},
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		log:        log,
	}
}

// SetOnUnauthorized регистрирует колбэк, вызываемый при отклонении токена.
func (c *Client) SetOnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do выполняет запрос и декодирует успешный ответ в out (если out != nil).
// Любой отказ возвращается как *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	const op = "api.Client.do"

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	if err := c.send(ctx, req, out); err != nil {
		c.log.Debug("request failed",
			slog.String("op", op),
			slog.String("method", method),
			slog.String("path", path),
			sl.Err(err))
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, req *http.Request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.failure(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Kind: KindApplication, Status: resp.StatusCode, Message: msgBadPayload}
		}
	}
	return nil
}

// failure превращает HTTP-отказ в *Error. Текст берётся из поля detail
// ответа сервера; 401 дополнительно сигналит о недействительной сессии.
func (c *Client) failure(status int, raw []byte) *Error {
	message := msgGenericFailure

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != nil {
		if detail, ok := payload.Detail.(string); ok && detail != "" {
			message = detail
		}
	}

	if status == http.StatusUnauthorized {
		c.log.Warn("credential rejected by server", slog.Int("status", status))
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &Error{Kind: KindStaleCredential, Status: status, Message: message}
	}
	return &Error{Kind: KindApplication, Status: status, Message: message}
}

// upload отправляет файл как multipart/form-data в поле file.
func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	if _, err := io.Copy(part, file); err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	if err := mw.Close(); err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: msgNetworkFailure}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(ctx, req, out)
}
