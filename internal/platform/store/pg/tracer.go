package pg

import (
	"context"
	"strings"

	"datemerge/internal/platform/logger"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement run through the store adapter
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// LogTracer logs statements at info, slow or failed ones at warn
// argument values are not logged, merge texts are user input
func LogTracer(l logger.Logger) QueryTracer {
	return logTracer{log: l.With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := t.log.Info()
	if ev.Slow || ev.Err != nil {
		evt = t.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", strings.Join(strings.Fields(ev.SQL), " ")).
		Int("args", len(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}
