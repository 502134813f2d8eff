// Package dashboard реализует контроллер главного экрана.
//
// Экран только читает: один составной запрос и производные ряды для
// графиков. Пустая разбивка по категориям — это пустое состояние,
// а не пустой график.
package dashboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/magabrotheeeer/financeflow-client/internal/controllers"
	"github.com/magabrotheeeer/financeflow-client/internal/lib/sl"
	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

// Point — пара (имя, значение) для рядов графиков.
type Point struct {
	Name  string
	Value float64
}

// Service описывает операции дашборда API-клиента.
type Service interface {
	Dashboard(ctx context.Context) (*models.DashboardData, error)
}

// Controller загружает агрегат и строит производные ряды.
type Controller struct {
	log *slog.Logger
	svc Service
	run controllers.Runner

	mu      sync.Mutex
	data    *models.DashboardData
	loading bool
	errMsg  string
}

// New создает новый экземпляр Controller.
func New(log *slog.Logger, svc Service) *Controller {
	return &Controller{log: log, svc: svc}
}

// Fetch загружает составной агрегат.
func (c *Controller) Fetch(ctx context.Context) error {
	const op = "controllers.dashboard.Fetch"

	epoch, err := c.run.Begin()
	if err != nil {
		return err
	}
	defer c.run.Done()

	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	data, err := c.svc.Dashboard(ctx)

	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()

	if !c.run.Valid(epoch) {
		c.log.Debug("stale dashboard response discarded", slog.String("op", op))
		return nil
	}
	if err != nil {
		c.log.Error("failed to fetch dashboard", slog.String("op", op), sl.Err(err))
		c.mu.Lock()
		c.errMsg = err.Error()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	return nil
}

// Data возвращает загруженный агрегат или nil.
func (c *Controller) Data() *models.DashboardData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	copied := *c.data
	return &copied
}

// CategorySeries — разбивка по категориям в виде упорядоченных пар
// (имя, значение): по убыванию значения, при равенстве — по имени.
// Для пустой разбивки возвращается пустой срез.
func (c *Controller) CategorySeries() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || len(c.data.CategoryBreakdown) == 0 {
		return []Point{}
	}
	series := make([]Point, 0, len(c.data.CategoryBreakdown))
	for name, value := range c.data.CategoryBreakdown {
		series = append(series, Point{Name: name, Value: value})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Value != series[j].Value {
			return series[i].Value > series[j].Value
		}
		return series[i].Name < series[j].Name
	})
	return series
}

// BalanceSeries — фиксированная пара балансов для графика.
func (c *Controller) BalanceSeries() []Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return []Point{}
	}
	return []Point{
		{Name: "Cash", Value: c.data.CashBalance},
		{Name: "Savings", Value: c.data.SavingsBalance},
	}
}

// RecentRecommendations — до трёх последних рекомендаций.
func (c *Controller) RecentRecommendations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		return nil
	}
	recs := c.data.RecentRecommendations
	if len(recs) > 3 {
		recs = recs[:3]
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Loading сообщает, идёт ли загрузка.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Close отмечает уход с экрана: поздние ответы будут отброшены.
func (c *Controller) Close() { c.run.Invalidate() }

// Error возвращает текст последней ошибки.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}
