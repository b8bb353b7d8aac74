package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"securebank/internal/config"
	"securebank/internal/handlers"
	"securebank/internal/logging"
	"securebank/internal/sandbox"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	bank := sandbox.NewBank(sandbox.Options{
		Fees:       cfg.Fees,
		MinBalance: cfg.Sandbox.MinBalance,
		DailyLimit: cfg.Sandbox.DailyLimit,
	})
	admin, err := bank.SeedAdmin(cfg.Sandbox.AdminUsername, cfg.Sandbox.AdminPassword)
	if err != nil {
		logger.Fatal("Failed to seed admin user", zap.Error(err))
	}
	logger.Info("Admin user ready", zap.String("username", admin.Username))

	h := handlers.NewHandler(bank, sandbox.NewTokenService(cfg.Sandbox.JWTSecret, cfg.Sandbox.TokenTTL), logger)
	app := handlers.NewApp(h, handlers.AppConfig{AccessLog: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down sandbox server")
		if err := app.Shutdown(); err != nil {
			logger.Error("Failed to shut down server", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Sandbox.Port)
	logger.Info("Sandbox server starting", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}
