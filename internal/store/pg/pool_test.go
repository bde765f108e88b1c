package pg

import (
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"twiliokit/internal/config"
)

func poolConfig(t *testing.T) *pgxpool.Config {
	t.Helper()
	cfg, err := pgxpool.ParseConfig("postgres://localhost:5432/twiliokit")
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestApplyPoolConfigSetsKnobs(t *testing.T) {
	cfg := poolConfig(t)

	err := applyPoolConfig(cfg, config.PoolConfig{
		MaxConns:          25,
		MinConns:          2,
		MaxConnLifetime:   "30m",
		MaxConnIdleTime:   "5m",
		HealthCheckPeriod: "15s",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.MaxConns != 25 || cfg.MinConns != 2 {
		t.Fatalf("conn counts not applied: max=%d min=%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.MaxConnLifetime != 30*time.Minute ||
		cfg.MaxConnIdleTime != 5*time.Minute ||
		cfg.HealthCheckPeriod != 15*time.Second {
		t.Fatalf("durations not applied: %v %v %v",
			cfg.MaxConnLifetime, cfg.MaxConnIdleTime, cfg.HealthCheckPeriod)
	}
}

func TestApplyPoolConfigKeepsDefaultsWhenUnset(t *testing.T) {
	cfg := poolConfig(t)
	before := *cfg

	if err := applyPoolConfig(cfg, config.PoolConfig{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.MaxConns != before.MaxConns || cfg.MinConns != before.MinConns {
		t.Fatal("unset conn counts must keep pgx defaults")
	}
	if cfg.MaxConnLifetime != before.MaxConnLifetime {
		t.Fatal("unset lifetime must keep pgx default")
	}
}

func TestApplyPoolConfigRejectsBadDurations(t *testing.T) {
	cases := []struct {
		opts config.PoolConfig
		want string
	}{
		{config.PoolConfig{MaxConnLifetime: "nope"}, "DB_POOL_MAX_CONN_LIFETIME"},
		{config.PoolConfig{MaxConnIdleTime: "5 minutes"}, "DB_POOL_MAX_CONN_IDLE_TIME"},
		{config.PoolConfig{HealthCheckPeriod: "-"}, "DB_POOL_HEALTH_CHECK_PERIOD"},
	}
	for _, c := range cases {
		err := applyPoolConfig(poolConfig(t), c.opts)
		if err == nil {
			t.Fatalf("%+v: expected error", c.opts)
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Fatalf("error %q should name %s", err, c.want)
		}
	}
}
