package store

import (
	"context"

	"datemerge/internal/platform/logger"
	"datemerge/internal/platform/store/ch"
	"datemerge/internal/platform/store/pg"
)

func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.LogTracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:            cfg.PG.URL,
		MaxConns:       cfg.PG.MaxConns,
		AppName:        cfg.AppName,
		SlowMs:         cfg.PG.SlowQueryMs,
		ConnectRetries: cfg.PG.ConnectRetries,
		PingTimeout:    cfg.PG.PingTimeout,
	}, tracer)
	if err != nil {
		return nil, err
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg CHConfig) (Clickhouse, error) {
	c, err := ch.Open(ctx, ch.Config{URL: cfg.URL, Role: cfg.ClientRole, Tag: cfg.ClientTag})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
