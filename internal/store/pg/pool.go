package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"twiliokit/internal/config"
)

// NewPool builds a pgxpool from the DSN plus the DB_POOL_* knobs. Unset
// knobs (zero / empty string) keep pgx defaults.
func NewPool(ctx context.Context, dsn string, opts config.PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if err := applyPoolConfig(cfg, opts); err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

func applyPoolConfig(cfg *pgxpool.Config, opts config.PoolConfig) error {
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}

	set := []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{opts.MaxConnLifetime, "DB_POOL_MAX_CONN_LIFETIME", &cfg.MaxConnLifetime},
		{opts.MaxConnIdleTime, "DB_POOL_MAX_CONN_IDLE_TIME", &cfg.MaxConnIdleTime},
		{opts.HealthCheckPeriod, "DB_POOL_HEALTH_CHECK_PERIOD", &cfg.HealthCheckPeriod},
	}
	for _, s := range set {
		if s.raw == "" {
			continue
		}
		d, err := time.ParseDuration(s.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", s.name, err)
		}
		*s.dst = d
	}
	return nil
}
