// Command datemerge-api serves date recognition and dialogue date merging over HTTP
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datemerge/internal/modkit/httpkit"
	"datemerge/internal/platform/config"
	"datemerge/internal/platform/logger"
	phttp "datemerge/internal/platform/net/http"
	"datemerge/internal/platform/store"

	"datemerge/internal/services/api"
)

func main() {
	// CORE_API_* for the http server, module options read their own prefixes off root
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	// both stores are optional, the merge log and the branch stats turn off without them
	pgOn := pgCfg.MayBool("ENABLED", pgCfg.MayString("DBURL", "") != "")
	chOn := chCfg.MayBool("ENABLED", chCfg.MayString("DBURL", "") != "")

	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "datemerge-api",
			PG: store.PGConfig{
				Enabled:     pgOn,
				URL:         dburl(pgCfg, pgOn),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),

				ConnectRetries: pgCfg.MayInt("CONNECT_RETRIES", 6),
				PingTimeout:    pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
			},
			CH: store.CHConfig{
				Enabled:    chOn,
				URL:        dburl(chCfg, chOn),
				ClientRole: "datemerge",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// reads CORE_API_PORT and CORE_API_SHUTDOWN_GRACE
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			Stack: httpkit.StackOptions{
				Log:         logger.Named("http"),
				Timeout:     apiCfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
				SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
				CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}

// dburl is required once a store is enabled explicitly
func dburl(cfg config.Conf, on bool) string {
	if !on {
		return ""
	}
	return cfg.MustString("DBURL")
}
