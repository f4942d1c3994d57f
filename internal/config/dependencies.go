package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds the external connections a command may need. Fields are
// nil unless the matching option was applied.
type Dependencies struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
	Logger   *slog.Logger
}

type Option func(context.Context, *Dependencies) error

func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}

func NewDependencies(ctx context.Context, opts ...Option) (deps *Dependencies, err error) {
	deps = &Dependencies{Logger: slog.Default()}
	defer func() {
		if err != nil {
			deps.Close()
			deps = nil
		}
	}()

	for _, opt := range opts {
		if err = opt(ctx, deps); err != nil {
			return deps, err
		}
	}
	return deps, nil
}

func WithPostgres(dsn string) Option {
	return func(ctx context.Context, d *Dependencies) error {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("ping postgres: %w", err)
		}
		d.Postgres = pool
		return nil
	}
}

func WithRedis(addr string, db int) Option {
	return func(ctx context.Context, d *Dependencies) error {
		client := redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("ping redis %s: %w", addr, err)
		}
		d.Redis = client
		return nil
	}
}

// ParseLevel maps a config log level to slog. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithLogger installs a text logger writing to w (stdout when nil) as the
// process default.
func WithLogger(level string, w io.Writer) Option {
	return func(_ context.Context, d *Dependencies) error {
		if w == nil {
			w = os.Stdout
		}
		logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: ParseLevel(level),
		}))
		slog.SetDefault(logger)
		d.Logger = logger
		return nil
	}
}
