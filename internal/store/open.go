package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/carbontrack/internal/carbon"
	"github.com/sadopc/carbontrack/internal/config"
)

// Open returns the repository selected by cfg. A Postgres store that cannot
// be reached falls back to SQLite at cfg.Path.
func Open(cfg config.StorageConfig, logger *slog.Logger) (carbon.Repository, error) {
	if cfg.Driver == config.DriverPostgres {
		repo, err := openPostgres(cfg.Postgres)
		if err == nil {
			logger.Info("postgres repository enabled")
			return repo, nil
		}
		logger.Error("postgres unavailable, using sqlite repository", "error", err)
	}
	s, err := New(cfg.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("sqlite repository enabled", "path", cfg.Path)
	return s, nil
}

func openPostgres(cfg config.PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn not set")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := NewPostgres(pool)
	if err := p.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}
