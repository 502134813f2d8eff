package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/financeflow-client/internal/models"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) Dashboard(ctx context.Context) (*models.DashboardData, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(*models.DashboardData)
	return data, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testData() *models.DashboardData {
	return &models.DashboardData{
		MonthlyExpenses: 850.25,
		CashBalance:     1200,
		SavingsBalance:  5000,
		TotalExpenses:   4210.75,
		CategoryBreakdown: map[string]float64{
			"Food & Dining":  320.50,
			"Transportation": 120,
			"Shopping":       320.50,
			"Entertainment":  89.25,
		},
		RecentRecommendations: []string{"r1", "r2", "r3", "r4"},
	}
}

func TestController_Fetch(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(testData(), nil).Once()

	c := New(newNoopLogger(), svc)
	require.NoError(t, c.Fetch(context.Background()))

	data := c.Data()
	require.NotNil(t, data)
	assert.Equal(t, 850.25, data.MonthlyExpenses)
	assert.False(t, c.Loading())
	assert.Equal(t, "", c.Error())
}

func TestController_Fetch_Failure(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(nil, errors.New("backend down")).Once()

	c := New(newNoopLogger(), svc)

	err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, c.Data())
	assert.Equal(t, "backend down", c.Error())
}

func TestController_CategorySeries_Ordering(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(testData(), nil).Once()

	c := New(newNoopLogger(), svc)
	require.NoError(t, c.Fetch(context.Background()))

	series := c.CategorySeries()
	require.Len(t, series, 4)
	// По убыванию значения, при равенстве — по имени.
	assert.Equal(t, Point{Name: "Food & Dining", Value: 320.50}, series[0])
	assert.Equal(t, Point{Name: "Shopping", Value: 320.50}, series[1])
	assert.Equal(t, Point{Name: "Transportation", Value: 120}, series[2])
	assert.Equal(t, Point{Name: "Entertainment", Value: 89.25}, series[3])
}

func TestController_CategorySeries_Empty(t *testing.T) {
	svc := new(ServiceMock)
	data := testData()
	data.CategoryBreakdown = map[string]float64{}
	svc.On("Dashboard", mock.Anything).Return(data, nil).Once()

	c := New(newNoopLogger(), svc)
	require.NoError(t, c.Fetch(context.Background()))

	assert.Empty(t, c.CategorySeries())
	assert.NotNil(t, c.CategorySeries())
}

func TestController_SeriesBeforeFetch(t *testing.T) {
	c := New(newNoopLogger(), new(ServiceMock))

	assert.Empty(t, c.CategorySeries())
	assert.Empty(t, c.BalanceSeries())
	assert.Nil(t, c.RecentRecommendations())
	assert.Nil(t, c.Data())
}

func TestController_BalanceSeries(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(testData(), nil).Once()

	c := New(newNoopLogger(), svc)
	require.NoError(t, c.Fetch(context.Background()))

	assert.Equal(t, []Point{
		{Name: "Cash", Value: 1200},
		{Name: "Savings", Value: 5000},
	}, c.BalanceSeries())
}

func TestController_RecentRecommendations_CappedAtThree(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Dashboard", mock.Anything).Return(testData(), nil).Once()

	c := New(newNoopLogger(), svc)
	require.NoError(t, c.Fetch(context.Background()))

	assert.Equal(t, []string{"r1", "r2", "r3"}, c.RecentRecommendations())
}
