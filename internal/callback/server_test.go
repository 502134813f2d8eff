package callback

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestServer_SuccessCallback(t *testing.T) {
	s := New("127.0.0.1:8455", newNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/subscription/success?session_id=cs_123", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment received")

	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cs_123", res.SessionID)
	assert.False(t, res.Cancelled)
}

func TestServer_CancelCallback(t *testing.T) {
	s := New("127.0.0.1:8455", newNoopLogger())

	req := httptest.NewRequest(http.MethodGet, "/subscription/cancel", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, "", res.SessionID)
}

func TestServer_WaitHonoursContext(t *testing.T) {
	s := New("127.0.0.1:8455", newNoopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServer_OriginURL(t *testing.T) {
	s := New("127.0.0.1:8455", newNoopLogger())
	assert.Equal(t, "http://127.0.0.1:8455", s.OriginURL())
}

func TestServer_Start_PortBusy(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(ln.Addr().String(), newNoopLogger())
	assert.Error(t, s.Start())
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := New("127.0.0.1:0", newNoopLogger())
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}

func TestServer_OnlyFirstResultKept(t *testing.T) {
	s := New("127.0.0.1:8455", newNoopLogger())

	for _, target := range []string{
		"/subscription/success?session_id=cs_1",
		"/subscription/success?session_id=cs_2",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		s.srv.Handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cs_1", res.SessionID)
}
