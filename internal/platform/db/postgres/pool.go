package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/hrms-lite/internal/platform/config"
)

const applicationName = "hrms-lite"

// BuildPoolConfig は database.postgres 設定から pgxpool.Config を構築します。
//
// セッションのタイムゾーンは UTC に固定します。attendance_date は UTC の日付として扱われます。
func BuildPoolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	params := poolCfg.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}

	if n := cfg.MaxOpenConns; n > 0 {
		poolCfg.MaxConns = int32(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		if cfg.MaxOpenConns > 0 && n > cfg.MaxOpenConns {
			n = cfg.MaxOpenConns
		}
		poolCfg.MinConns = int32(n)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	return poolCfg, nil
}

// NewPool は接続プールを生成して疎通を確認します。プールはそのまま server.Pinger として使えます。
func NewPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool for %s@%s/%s: %w", cfg.User, cfg.Host, cfg.Name, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping %s/%s: %w", cfg.Host, cfg.Name, err)
	}

	return pool, nil
}
