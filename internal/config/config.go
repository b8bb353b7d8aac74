package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"securebank/internal/intent"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const envPrefix = "SECUREBANK_"

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	APIBaseURL          string
	RequestTimeout      time.Duration
	Fees                intent.FeeSchedule
	LowBalanceThreshold decimal.Decimal

	Dashboard struct {
		PollInterval time.Duration
	}

	Session struct {
		Backend string
		Path    string
		DSN     string
		// Key is hex; when set the session file is encrypted.
		Key string
	}

	Log struct {
		Level string
	}

	Sandbox struct {
		Port          int
		JWTSecret     string
		TokenTTL      time.Duration
		AdminUsername string
		AdminPassword string
		MinBalance    decimal.Decimal
		// DailyLimit caps withdrawals and transfers per account per day;
		// zero disables it.
		DailyLimit decimal.Decimal
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		APIBaseURL:          "http://localhost:8080/api",
		RequestTimeout:      15 * time.Second,
		Fees:                intent.DefaultFeeSchedule(),
		LowBalanceThreshold: intent.DefaultLowBalanceThreshold,
	}
	cfg.Dashboard.PollInterval = 30 * time.Second
	cfg.Session.Backend = BackendFile
	cfg.Session.Path = defaultSessionPath()
	cfg.Log.Level = "info"
	cfg.Sandbox.Port = 8080
	cfg.Sandbox.JWTSecret = "securebank-sandbox-secret"
	cfg.Sandbox.TokenTTL = 24 * time.Hour
	cfg.Sandbox.AdminUsername = "admin"
	cfg.Sandbox.AdminPassword = "Admin@123"
	return cfg
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".securebank-session.json"
	}
	return filepath.Join(dir, "securebank", "session.json")
}

// fileConfig mirrors the YAML layout. Money is kept as text so that "5" and
// "5.00" both parse exactly.
type fileConfig struct {
	APIBaseURL     string `yaml:"api_base_url"`
	RequestTimeout string `yaml:"request_timeout"`
	Fees           struct {
		Withdraw string `yaml:"withdraw"`
		Transfer string `yaml:"transfer"`
	} `yaml:"fees"`
	LowBalanceThreshold string `yaml:"low_balance_threshold"`
	Dashboard           struct {
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"dashboard"`
	Session struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		DSN     string `yaml:"dsn"`
		Key     string `yaml:"key"`
	} `yaml:"session"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Sandbox struct {
		Port          int    `yaml:"port"`
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		AdminUsername string `yaml:"admin_username"`
		AdminPassword string `yaml:"admin_password"`
		MinBalance    string `yaml:"min_balance"`
		DailyLimit    string `yaml:"daily_limit"`
	} `yaml:"sandbox"`
}

// Load layers defaults, the YAML file at path (optional; empty skips it),
// a .env file in the working directory and SECUREBANK_* variables, in that
// order, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.APIBaseURL, fc.APIBaseURL)
	setString(&c.Session.Backend, fc.Session.Backend)
	setString(&c.Session.Path, fc.Session.Path)
	setString(&c.Session.DSN, fc.Session.DSN)
	setString(&c.Session.Key, fc.Session.Key)
	setString(&c.Log.Level, fc.Log.Level)
	setString(&c.Sandbox.JWTSecret, fc.Sandbox.JWTSecret)
	setString(&c.Sandbox.AdminUsername, fc.Sandbox.AdminUsername)
	setString(&c.Sandbox.AdminPassword, fc.Sandbox.AdminPassword)
	if fc.Sandbox.Port != 0 {
		c.Sandbox.Port = fc.Sandbox.Port
	}

	return errors.Join(
		setDuration(&c.RequestTimeout, "request_timeout", fc.RequestTimeout),
		setDuration(&c.Dashboard.PollInterval, "dashboard.poll_interval", fc.Dashboard.PollInterval),
		setDuration(&c.Sandbox.TokenTTL, "sandbox.token_ttl", fc.Sandbox.TokenTTL),
		setDecimal(&c.Fees.Withdraw, "fees.withdraw", fc.Fees.Withdraw),
		setDecimal(&c.Fees.Transfer, "fees.transfer", fc.Fees.Transfer),
		setDecimal(&c.LowBalanceThreshold, "low_balance_threshold", fc.LowBalanceThreshold),
		setDecimal(&c.Sandbox.MinBalance, "sandbox.min_balance", fc.Sandbox.MinBalance),
		setDecimal(&c.Sandbox.DailyLimit, "sandbox.daily_limit", fc.Sandbox.DailyLimit),
	)
}

func (c *Config) applyEnv() error {
	setString(&c.APIBaseURL, env("API_BASE_URL"))
	setString(&c.Session.Backend, env("SESSION_BACKEND"))
	setString(&c.Session.Path, env("SESSION_PATH"))
	setString(&c.Session.DSN, env("SESSION_DSN"))
	setString(&c.Session.Key, env("SESSION_KEY"))
	setString(&c.Log.Level, env("LOG_LEVEL"))
	setString(&c.Sandbox.JWTSecret, env("SANDBOX_JWT_SECRET"))
	setString(&c.Sandbox.AdminUsername, env("SANDBOX_ADMIN_USERNAME"))
	setString(&c.Sandbox.AdminPassword, env("SANDBOX_ADMIN_PASSWORD"))

	var portErr error
	if v := env("SANDBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			portErr = fmt.Errorf("invalid %sSANDBOX_PORT %q: %w", envPrefix, v, err)
		} else {
			c.Sandbox.Port = port
		}
	}

	return errors.Join(
		portErr,
		setDuration(&c.RequestTimeout, envPrefix+"REQUEST_TIMEOUT", env("REQUEST_TIMEOUT")),
		setDuration(&c.Dashboard.PollInterval, envPrefix+"DASHBOARD_POLL_INTERVAL", env("DASHBOARD_POLL_INTERVAL")),
		setDuration(&c.Sandbox.TokenTTL, envPrefix+"SANDBOX_TOKEN_TTL", env("SANDBOX_TOKEN_TTL")),
		setDecimal(&c.Fees.Withdraw, envPrefix+"FEES_WITHDRAW", env("FEES_WITHDRAW")),
		setDecimal(&c.Fees.Transfer, envPrefix+"FEES_TRANSFER", env("FEES_TRANSFER")),
		setDecimal(&c.LowBalanceThreshold, envPrefix+"LOW_BALANCE_THRESHOLD", env("LOW_BALANCE_THRESHOLD")),
		setDecimal(&c.Sandbox.MinBalance, envPrefix+"SANDBOX_MIN_BALANCE", env("SANDBOX_MIN_BALANCE")),
		setDecimal(&c.Sandbox.DailyLimit, envPrefix+"SANDBOX_DAILY_LIMIT", env("SANDBOX_DAILY_LIMIT")),
	)
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		errs = append(errs, fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.Fees.Withdraw.IsNegative() || c.Fees.Transfer.IsNegative() {
		errs = append(errs, errors.New("fees must not be negative"))
	}
	if c.Dashboard.PollInterval <= 0 {
		errs = append(errs, errors.New("dashboard.poll_interval must be positive"))
	}
	switch c.Session.Backend {
	case BackendFile:
		if c.Session.Path == "" {
			errs = append(errs, errors.New("session.path is required for the file backend"))
		}
	case BackendPostgres:
		if c.Session.DSN == "" {
			errs = append(errs, errors.New("session.dsn is required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session.backend %q", c.Session.Backend))
	}
	if _, err := c.SessionKey(); err != nil {
		errs = append(errs, err)
	}
	if c.Sandbox.Port < 0 || c.Sandbox.Port > 65535 {
		errs = append(errs, fmt.Errorf("sandbox.port out of range: %d", c.Sandbox.Port))
	}
	if c.Sandbox.MinBalance.IsNegative() || c.Sandbox.DailyLimit.IsNegative() {
		errs = append(errs, errors.New("sandbox limits must not be negative"))
	}
	if c.Sandbox.TokenTTL <= 0 {
		errs = append(errs, errors.New("sandbox.token_ttl must be positive"))
	}
	return errors.Join(errs...)
}

// SessionKey decodes session.key. A nil key means the file is stored in
// plain text.
func (c *Config) SessionKey() ([]byte, error) {
	if c.Session.Key == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Session.Key)
	if err != nil {
		return nil, fmt.Errorf("session.key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session.key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (c *Config) Calculator() intent.Calculator {
	return intent.NewCalculator(c.Fees, c.LowBalanceThreshold)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

func setDecimal(dst *decimal.Decimal, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
