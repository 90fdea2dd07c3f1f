package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/qasummary/internal/config"
	"github.com/at-ishikawa/qasummary/internal/database"
	"github.com/at-ishikawa/qasummary/internal/inference/provider"
	"github.com/at-ishikawa/qasummary/internal/summary"
)

// Components are the analyzer and the connections it was built on.
type Components struct {
	Analyzer *Analyzer
	// Repository and DB are nil unless the database is enabled
	Repository summary.Repository
	DB         *sqlx.DB

	closers []io.Closer
}

// Close releases every connection opened by Setup.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
}

// Setup builds an analyzer for the configured provider, with a Redis cache
// and a MySQL repository when they are enabled.
func Setup(ctx context.Context, cfg *config.Config) (*Components, error) {
	components := &Components{}

	client, err := provider.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("provider.New() > %w", err)
	}
	if closer, ok := client.(io.Closer); ok {
		components.closers = append(components.closers, closer)
	}

	opts := []Option{
		WithModel(provider.ModelName(cfg)),
		WithTemperature(cfg.Analyzer.Temperature),
		WithMaxOutputTokens(cfg.Analyzer.MaxOutputTokens),
	}

	if cfg.Redis.Enabled {
		redisClient, err := summary.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			components.Close()
			return nil, fmt.Errorf("summary.OpenRedis() > %w", err)
		}
		components.closers = append(components.closers, redisClient)
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		opts = append(opts, WithCache(summary.NewRedisCache(redisClient, ttl)))
		slog.Default().Debug("summary cache enabled", "addr", cfg.Redis.Addr, "ttl", ttl)
	}

	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database)
		if err != nil {
			components.Close()
			return nil, fmt.Errorf("database.Open() > %w", err)
		}
		components.closers = append(components.closers, db)
		components.DB = db
		components.Repository = summary.NewDBRepository(db)
		opts = append(opts, WithRepository(components.Repository))
		slog.Default().Debug("summary repository enabled", "host", cfg.Database.Host, "database", cfg.Database.Database)
	}

	components.Analyzer = New(client, opts...)
	return components, nil
}
