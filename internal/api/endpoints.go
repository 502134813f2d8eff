package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// Login выполняет вход по email и паролю.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup регистрирует нового пользователя.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dashboard возвращает составной агрегат для главного экрана.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardData, error) {
	var resp models.DashboardData
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListExpenses возвращает упорядоченный список расходов пользователя.
func (c *Client) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	var resp expensesResponse
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Expenses, nil
}

// AddExpense добавляет расход. Список после этого перечитывается
// целиком: идентификатор и нормализованную сумму назначает сервер.
func (c *Client) AddExpense(ctx context.Context, req ExpenseRequest) error {
	return c.do(ctx, http.MethodPost, "/expenses", req, nil)
}

// UploadStatement загружает файл выписки и возвращает сообщение сервера.
func (c *Client) UploadStatement(ctx context.Context, filename string, file io.Reader) (string, error) {
	var resp messageResponse
	if err := c.upload(ctx, "/expenses/upload", filename, file, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ExportExpenses возвращает расходы в виде сырого CSV-текста.
func (c *Client) ExportExpenses(ctx context.Context) (string, error) {
	var resp exportResponse
	if err := c.do(ctx, http.MethodGet, "/expenses/export", nil, &resp); err != nil {
		return "", err
	}
	return resp.CSVData, nil
}

// GetSetup возвращает финансовый профиль пользователя.
// Наличие балансов в ответе означает, что профиль существует.
func (c *Client) GetSetup(ctx context.Context) (*models.FinancialProfile, error) {
	var resp models.FinancialProfile
	if err := c.do(ctx, http.MethodGet, "/user/setup", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitSetup отправляет финансовый профиль.
func (c *Client) SubmitSetup(ctx context.Context, req SetupRequest) error {
	return c.do(ctx, http.MethodPost, "/user/setup", req, nil)
}

// Recommendations запрашивает персональные рекомендации.
func (c *Client) Recommendations(ctx context.Context) (string, error) {
	var resp recommendationsResponse
	if err := c.do(ctx, http.MethodPost, "/recommendations", nil, &resp); err != nil {
		return "", err
	}
	return resp.Recommendations, nil
}

// SendChat отправляет сообщение ассистенту и возвращает ответ.
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	var resp chatResponse
	body := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, "/chat", body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// ChatHistory возвращает сохранённые пары (вопрос, ответ).
func (c *Client) ChatHistory(ctx context.Context) ([]models.HistoryItem, error) {
	var resp historyResponse
	if err := c.do(ctx, http.MethodGet, "/chat/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// CreateCheckout создаёт сессию оплаты и возвращает URL страницы провайдера.
func (c *Client) CreateCheckout(ctx context.Context, packageID, originURL string) (string, error) {
	body := map[string]string{
		"package_id": packageID,
		"origin_url": originURL,
	}
	var resp checkoutResponse
	if err := c.do(ctx, http.MethodPost, "/subscription/checkout", body, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// CheckoutStatus опрашивает статус оплаты по идентификатору сессии провайдера.
func (c *Client) CheckoutStatus(ctx context.Context, sessionID string) (string, error) {
	var resp statusResponse
	path := "/subscription/status/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.PaymentStatus, nil
}
