package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setConfigPath(t *testing.T, path string) {
	t.Helper()
	original := os.Getenv("CONFIG_PATH")
	require.NoError(t, os.Setenv("CONFIG_PATH", path))
	t.Cleanup(func() {
		require.NoError(t, os.Setenv("CONFIG_PATH", original))
	})
}

func TestMustLoad_ValidConfig(t *testing.T) {
	configContent := `
env: test
state_dir: /tmp/financeflow-test
backend:
  base_url: "http://backend.local:8000"
  timeouthttp: 30s
  rate_limit: 2
  rate_burst: 4
checkout:
  callback_addr: "127.0.0.1:9999"
  package_id: "yearly"
  poll_interval: 1s
  poll_attempts: 10
  confirm_delay: 5s
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
	setConfigPath(t, path)

	cfg := MustLoad()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "/tmp/financeflow-test", cfg.StateDir)
	assert.Equal(t, "http://backend.local:8000", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.Equal(t, "127.0.0.1:9999", cfg.CallbackAddr)
	assert.Equal(t, "yearly", cfg.PackageID)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 10, cfg.PollAttempts)
	assert.Equal(t, 5*time.Second, cfg.ConfirmDelay)
}

func TestMustLoad_DefaultValues(t *testing.T) {
	configContent := `
env: test
state_dir: /tmp/financeflow-test
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
	setConfigPath(t, path)

	cfg := MustLoad()

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, 10, cfg.RateBurst)
	assert.Equal(t, "127.0.0.1:8455", cfg.CallbackAddr)
	assert.Equal(t, "monthly", cfg.PackageID)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 5, cfg.PollAttempts)
	assert.Equal(t, 3*time.Second, cfg.ConfirmDelay)
}

func TestMustLoad_StateDirFallback(t *testing.T) {
	configContent := `
env: test
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
	setConfigPath(t, path)

	cfg := MustLoad()

	base, err := os.UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "financeflow"), cfg.StateDir)
}

func TestConfig_String(t *testing.T) {
	configContent := `
env: test
state_dir: /tmp/financeflow-test
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configContent), 0o600))
	setConfigPath(t, path)

	cfg := MustLoad()
	dump := cfg.String()

	assert.Contains(t, dump, "Env: test")
	assert.Contains(t, dump, "BaseURL: http://localhost:8000")
	assert.Contains(t, dump, "PackageID: monthly")
}
