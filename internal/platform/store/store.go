// Package store opens the optional backends and exposes them behind small seams
package store

import (
	"context"
	"errors"
	"time"

	"datemerge/internal/platform/logger"
)

// Row is a single row scan
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos use
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside a transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam, Insert takes [][]any rows in table column order
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Pinger reports readiness, both adapters implement it
type Pinger interface{ Ping(context.Context) error }

// Config selects and configures the backends
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string

	// reported to the server as client info
	ClientRole string
	ClientTag  string
}

// Store holds the opened backends, a disabled one stays nil
type Store struct {
	Log logger.Logger

	PG TxRunner
	CH Clickhouse
}

// Option mutates the Store before backends open
type Option func(*Store)

// WithLogger sets the logger backends trace through
func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open opens every enabled backend, on error nothing stays open
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Named("store")}
	for _, o := range opts {
		o(s)
	}

	if cfg.PG.Enabled {
		a, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = a
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg.CH)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = c
	}
	return s, nil
}

// Close closes every opened backend
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
