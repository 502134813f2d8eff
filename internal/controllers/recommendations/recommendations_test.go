package recommendations

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

func (m *ServiceMock) GetSetup(ctx context.Context) (*models.FinancialProfile, error) {
	args := m.Called(ctx)
	profile, _ := args.Get(0).(*models.FinancialProfile)
	return profile, args.Error(1)
}

func (m *ServiceMock) Recommendations(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func balance(v float64) *float64 { return &v }

func TestController_CheckProfile(t *testing.T) {
	tests := []struct {
		name       string
		profile    *models.FinancialProfile
		err        error
		wantExists bool
	}{
		{
			name:       "profile with balances",
			profile:    &models.FinancialProfile{CashBalance: balance(100), SavingsBalance: balance(500)},
			wantExists: true,
		},
		{
			name:       "profile with single balance",
			profile:    &models.FinancialProfile{CashBalance: balance(0)},
			wantExists: true,
		},
		{
			name:       "empty profile",
			profile:    &models.FinancialProfile{},
			wantExists: false,
		},
		{
			name:       "request failed",
			profile:    nil,
			err:        errors.New("not found"),
			wantExists: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("GetSetup", mock.Anything).Return(tt.profile, tt.err).Once()

			c := New(newNoopLogger(), svc)
			c.CheckProfile(context.Background())

			assert.Equal(t, tt.wantExists, c.HasProfile())
		})
	}
}

func TestController_CheckProfile_StaleResponseDiscarded(t *testing.T) {
	svc := new(ServiceMock)

	started := make(chan struct{})
	release := make(chan struct{})
	svc.On("GetSetup", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&models.FinancialProfile{CashBalance: balance(100)}, nil).Once()

	c := New(newNoopLogger(), svc)

	done := make(chan struct{})
	go func() {
		c.CheckProfile(context.Background())
		close(done)
	}()
	<-started

	// Уход с экрана во время проверки: поздний ответ не должен
	// перезаписать состояние.
	c.Close()
	close(release)
	<-done

	assert.False(t, c.HasProfile())
}

func TestController_Generate_WithoutProfile(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GetSetup", mock.Anything).Return(&models.FinancialProfile{}, nil).Once()

	c := New(newNoopLogger(), svc)
	c.CheckProfile(context.Background())

	err := c.Generate(context.Background())
	require.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, "Please complete your financial profile first to get personalized recommendations.", c.Error())
	assert.Equal(t, "", c.Text())

	// Без профиля запрос рекомендаций не выполняется вовсе.
	svc.AssertNotCalled(t, "Recommendations")
}

func TestController_Generate_Success(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GetSetup", mock.Anything).
		Return(&models.FinancialProfile{CashBalance: balance(100)}, nil).Once()
	svc.On("Recommendations", mock.Anything).
		Return("Cut dining out by 20%.", nil).Once()

	c := New(newNoopLogger(), svc)
	c.CheckProfile(context.Background())

	require.NoError(t, c.Generate(context.Background()))
	assert.Equal(t, "Cut dining out by 20%.", c.Text())
	assert.Equal(t, "", c.Error())
}

func TestController_Generate_Failure(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("GetSetup", mock.Anything).
		Return(&models.FinancialProfile{CashBalance: balance(100)}, nil).Once()
	svc.On("Recommendations", mock.Anything).
		Return("", errors.New("Failed to get recommendations")).Once()

	c := New(newNoopLogger(), svc)
	c.CheckProfile(context.Background())

	err := c.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to get recommendations", c.Error())
	assert.Equal(t, "", c.Text())
}
