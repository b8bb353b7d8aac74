package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"securebank/internal/config"
	"securebank/internal/intent"
	"securebank/internal/logging"
	"securebank/internal/services"
	"securebank/internal/session"
	"securebank/internal/validate"
	"securebank/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries the flags and the dependencies built in PersistentPreRunE.
type cli struct {
	configPath string
	apiURL     string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	store    *session.Store
	auth     services.AuthService
	accounts services.AccountService
	txs      services.TransactionService
	admin    services.AdminService
	calc     intent.Calculator
	closers  []func() error

	in *bufio.Reader
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "securebank",
		Short: "SecureBank terminal client",
		Long: `securebank is a terminal client for the SecureBank REST API.

It keeps one signed-in session on disk, previews every deposit, withdrawal
and transfer before submitting it, and renders accounts, history and the
admin console as tables. The server is always the source of truth.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "API base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.accountsCmd(),
		c.txCmd(),
		c.dashboardCmd(),
		c.adminCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.APIBaseURL = c.apiURL
	}
	level := cfg.Log.Level
	if c.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger

	storage, err := c.openStorage()
	if err != nil {
		return err
	}

	var store *session.Store
	client, err := services.NewClient(cfg.APIBaseURL, cfg.RequestTimeout,
		services.TokenFunc(func() string { return store.Token() }), logger)
	if err != nil {
		return err
	}
	c.auth = services.NewAuthService(client)
	c.accounts = services.NewAccountService(client)
	c.txs = services.NewTransactionService(client)
	c.admin = services.NewAdminService(client)
	c.calc = cfg.Calculator()

	store = session.NewStore(storage, c.auth, logger, session.Options{
		OnLogout: func() { logger.Debug("Session cleared") },
	})
	store.Restore()
	c.store = store
	return nil
}

func (c *cli) openStorage() (session.Storage, error) {
	switch c.cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	case config.BackendPostgres:
		db, err := database.InitDB(c.cfg.Session.DSN)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func() error { return database.Close(db) })
		return database.NewSessionStorage(db), nil
	default:
		key, err := c.cfg.SessionKey()
		if err != nil {
			return nil, err
		}
		fs, err := session.NewFileStorage(c.cfg.Session.Path, key)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
}

func (c *cli) teardown() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			c.logger.Warn("Failed to release resource", zap.Error(err))
		}
	}
	c.closers = nil
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// private wraps a RunE so it only runs with a signed-in session.
func (c *cli) private(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.store.RequireAuth(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

func (c *cli) adminOnly(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.store.RequireAdmin(); err != nil {
			return err
		}
		return run(cmd, args)
	}
}

// displayError turns any failure into one line for the terminal.
func displayError(err error) string {
	var (
		verr    *validate.ValidationError
		authErr *session.AuthError
	)
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		return "not signed in; run `securebank login` first"
	case errors.Is(err, session.ErrForbidden):
		return "this command requires an administrator account"
	case errors.As(err, &verr):
		parts := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
		}
		return "invalid input: " + strings.Join(parts, "; ")
	case errors.As(err, &authErr):
		return authErr.Message
	}
	if remote, ok := services.AsRemote(err); ok {
		if remote.IsNetwork() {
			return remote.Message
		}
		if remote.Details != "" {
			return fmt.Sprintf("%s (%s)", remote.Message, remote.Details)
		}
		return remote.Message
	}
	return err.Error()
}

func parseDate(flag, v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return &validate.ValidationError{Fields: []validate.FieldError{{Field: flag, Message: "must be a YYYY-MM-DD date"}}}
	}
	return nil
}
