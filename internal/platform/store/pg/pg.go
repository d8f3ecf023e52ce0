// Package pg opens the postgres pool behind the merge log
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool and the boot ping
type Config struct {
	URL      string
	MaxConns int32
	AppName  string
	SlowMs   int

	ConnectRetries int           // 6
	PingTimeout    time.Duration // 3s
}

// PG is a pool with an optional query tracer
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

var (
	newPool      = pgxpool.NewWithConfig
	firstBackoff = 150 * time.Millisecond
)

// Open builds the pool and pings it until it answers, a pool that never does is closed
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("pg: parse url: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pcfg.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}

	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pg: pool: %w", err)
	}
	if err := pingRetry(ctx, pool.Ping, cfg.ConnectRetries, cfg.PingTimeout); err != nil {
		pool.Close()
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// pingRetry calls ping with exponential backoff, at most retries+1 times
func pingRetry(ctx context.Context, ping func(context.Context) error, retries int, timeout time.Duration) error {
	if retries <= 0 {
		retries = 6
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = firstBackoff
	b.MaxInterval = 2 * time.Second

	err := backoff.Retry(func() error {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return ping(pctx)
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
	if err != nil {
		return fmt.Errorf("pg: ping after %d retries: %w", retries, err)
	}
	return nil
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
