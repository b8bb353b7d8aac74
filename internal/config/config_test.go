package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, kv := range os.Environ() {
		if key, _, _ := strings.Cut(kv, "="); strings.HasPrefix(key, envPrefix) {
			t.Setenv(key, "")
		}
	}
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.True(t, decimal.NewFromInt(5).Equal(cfg.Fees.Withdraw))
	assert.True(t, decimal.NewFromInt(10).Equal(cfg.Fees.Transfer))
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.LowBalanceThreshold))
	assert.Equal(t, 30*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.NotEmpty(t, cfg.Session.Path)
}

func TestYAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "securebank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://bank.example.com/api
request_timeout: 5s
fees:
  withdraw: "2.50"
  transfer: "7"
dashboard:
  poll_interval: 10s
session:
  backend: memory
log:
  level: debug
sandbox:
  daily_limit: "50000"
`), 0o600))
	t.Setenv("SECUREBANK_FEES_TRANSFER", "12.25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "2.5", cfg.Fees.Withdraw.String())
	assert.Equal(t, "12.25", cfg.Fees.Transfer.String())
	assert.Equal(t, 10*time.Second, cfg.Dashboard.PollInterval)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, decimal.NewFromInt(50000).Equal(cfg.Sandbox.DailyLimit))
	assert.True(t, cfg.Sandbox.MinBalance.IsZero())
}

func TestDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECUREBANK_API_BASE_URL=http://10.0.0.5:9000/api\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SECUREBANK_API_BASE_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.APIBaseURL)
}

func TestMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative fee", func(c *Config) { c.Fees.Withdraw = decimal.NewFromInt(-1) }, "fees"},
		{"zero poll", func(c *Config) { c.Dashboard.PollInterval = 0 }, "poll_interval"},
		{"relative url", func(c *Config) { c.APIBaseURL = "/api" }, "api_base_url"},
		{"postgres without dsn", func(c *Config) { c.Session.Backend = BackendPostgres }, "session.dsn"},
		{"unknown backend", func(c *Config) { c.Session.Backend = "redis" }, "session.backend"},
		{"bad key", func(c *Config) { c.Session.Key = "abcd" }, "session.key"},
		{"negative limit", func(c *Config) { c.Sandbox.DailyLimit = decimal.NewFromInt(-1) }, "sandbox limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv("SECUREBANK_REQUEST_TIMEOUT", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestSessionKey(t *testing.T) {
	cfg := Default()
	key, err := cfg.SessionKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	cfg.Session.Key = strings.Repeat("ab", 32)
	key, err = cfg.SessionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}
