package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

// NewPool abre el pool y espera a que la base responda: el ping inicial se reintenta
// cfg.ConnectRetries veces con espera creciente.
func NewPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = 1
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 15 * time.Minute
	// NUMERIC <-> decimal.Decimal en todas las conexiones.
	pc.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}

	wait := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}
		if attempt >= cfg.ConnectRetries {
			pool.Close()
			return nil, fmt.Errorf("ping DB: %w", err)
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("base no disponible, reintentando")
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, 5*time.Second)
	}
	log.Info().Str("host", pc.ConnConfig.Host).Str("database", pc.ConnConfig.Database).Int32("max_conns", pc.MaxConns).Msg("pool PostgreSQL listo")
	return pool, nil
}
