package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/abrezinsky/contestvote/internal/app"
	"github.com/abrezinsky/contestvote/internal/auth"
	"github.com/abrezinsky/contestvote/internal/config"
	"github.com/abrezinsky/contestvote/internal/logger"
)

var (
	version = "dev"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "contestvote: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args, stderr)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "contestvote %s\n", version)
		return nil
	}

	appLog := logger.New(logger.Options{
		Level:          logger.ParseLevel(cfg.LogLevel),
		Format:         logger.ParseFormat(cfg.LogFormat),
		Output:         stdout,
		RequestLogging: cfg.HTTPLog,
	})

	// Setup admin authentication
	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
		appLog.Info("Admin password generated", "password", password)
	}

	if cfg.JWTSecret == "" {
		appLog.Warn("No JWT secret configured, voting is disabled until one is set")
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a, err := app.New(appLog, app.Options{
		DBPath:       cfg.DBPath,
		AdminAuth:    auth.New(password),
		JWTSecret:    cfg.JWTSecret,
		Location:     loc,
		SyncInterval: cfg.SyncInterval,
		PayoutURL:    cfg.PayoutURL,
		PayoutToken:  cfg.PayoutToken,
	})
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go listenForControlSignals(ctx, appLog)

	return a.Run(ctx, cfg.Addr())
}
