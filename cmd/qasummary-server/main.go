package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/qasummary/internal/analyzer"
	"github.com/at-ishikawa/qasummary/internal/config"
	"github.com/at-ishikawa/qasummary/internal/database"
	"github.com/at-ishikawa/qasummary/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configFile string
	debug      bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("qasummary-server", pflag.ContinueOnError)
	flags.StringVar(&opts.configFile, "config", os.Getenv("QASUMMARY_CONFIG"), "config file")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	if err := flags.Parse(args); err != nil {
		return options{}, fmt.Errorf("flags.Parse() > %w", err)
	}
	return opts, nil
}

func run() error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	setupLogger(opts.debug)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load() > %w", err)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate() > %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := analyzer.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("analyzer.Setup() > %w", err)
	}
	defer components.Close()

	if components.DB != nil {
		if err := database.Migrate(ctx, components.DB); err != nil {
			return fmt.Errorf("database.Migrate() > %w", err)
		}
	}

	handler := server.NewSummaryHandler(components.Analyzer, components.Repository, cfg.Analyzer.Strict)
	app := server.NewApp(cfg.Server, handler)

	errCh := make(chan error, 1)
	go func() {
		slog.Default().Info("starting server",
			"addr", cfg.Server.Addr,
			"provider", cfg.Analyzer.Provider,
			"cache", cfg.Redis.Enabled,
			"database", cfg.Database.Enabled,
		)
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app.Listen(%s) > %w", cfg.Server.Addr, err)
	case <-ctx.Done():
	}

	slog.Default().Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("app.ShutdownWithTimeout() > %w", err)
	}
	return nil
}

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})))
}
