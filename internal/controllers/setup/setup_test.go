package setup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/financeflow-client/internal/api"
)

type ServiceMock struct{ mock.Mock }

func (m *ServiceMock) SubmitSetup(ctx context.Context, req api.SetupRequest) error {
	return m.Called(ctx, req).Error(0)
}

type SessionsMock struct{ mock.Mock }

func (m *SessionsMock) MarkSetupCompleted() error {
	return m.Called().Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestController_Submit_BuildsRequest(t *testing.T) {
	svc := new(ServiceMock)
	sessions := new(SessionsMock)

	svc.On("SubmitSetup", mock.Anything, api.SetupRequest{
		BankAccounts:   []string{"Chase", "Wells Fargo"},
		CreditCards:    []string{"Visa"},
		CashBalance:    1500.50,
		SavingsBalance: 0,
	}).Return(nil).Once()
	sessions.On("MarkSetupCompleted").Return(nil).Once()

	c := New(newNoopLogger(), svc, sessions)
	c.ToggleBank("Chase")
	c.ToggleBank("Wells Fargo")
	c.ToggleBank("Citibank")
	c.ToggleBank("Citibank") // повторная отметка снимает выбор
	c.ToggleCreditCard("Visa")
	c.SetBalances("1500.50", "not a number")

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, "Setup completed successfully!", c.Success())
	assert.Equal(t, "", c.Error())

	svc.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestController_BalanceCoercion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"empty is zero", "", 0},
		{"garbage is zero", "abc", 0},
		{"number parsed", "250.75", 250.75},
		{"negative kept", "-10", -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceBalance(tt.raw))
		})
	}
}

func TestController_Skip_SubmitsEmptyProfile(t *testing.T) {
	svc := new(ServiceMock)
	sessions := new(SessionsMock)

	svc.On("SubmitSetup", mock.Anything, api.SetupRequest{
		BankAccounts: []string{},
		CreditCards:  []string{},
	}).Return(nil).Once()
	sessions.On("MarkSetupCompleted").Return(nil).Once()

	c := New(newNoopLogger(), svc, sessions)
	// Отметки сделаны, но Skip их не отправляет.
	c.ToggleBank("Chase")
	c.SetBalances("100", "200")

	require.NoError(t, c.Skip(context.Background()))
	assert.Equal(t, "Setup completed successfully!", c.Success())

	svc.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestController_Submit_BackendFailure(t *testing.T) {
	svc := new(ServiceMock)
	sessions := new(SessionsMock)

	svc.On("SubmitSetup", mock.Anything, mock.Anything).
		Return(errors.New("Setup failed")).Once()

	c := New(newNoopLogger(), svc, sessions)

	err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Setup failed", c.Error())
	assert.Equal(t, "", c.Success())

	// Флаг настройки не поднимается при отказе сервера.
	sessions.AssertNotCalled(t, "MarkSetupCompleted")
}
