// Package ch provides a clickhouse client
package ch

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"datemerge/internal/core/version"
)

// Config configures clickhouse client
type Config struct {
	URL string

	// Role and Tag are reported to the server as client info
	Role string
	Tag  string
}

// Rows is the minimal result set iteration for ch
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
	Columns() []string
}

// CH wraps a native clickhouse connection
type CH struct {
	conn driver.Conn
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Open parses the DSN and opens a connection, it does not ping
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("ch: parse dsn: %w", err)
	}
	if cfg.Role != "" || cfg.Tag != "" {
		opts.ClientInfo = clientInfo(cfg.Role, cfg.Tag)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ch: open: %w", err)
	}
	return &CH{conn: conn}, nil
}

// Insert appends rows to table in one batch, every row lists column values in table order
func (c *CH) Insert(ctx context.Context, table string, rows [][]any) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("ch: invalid table name %q", table)
	}
	if len(rows) == 0 {
		return nil
	}
	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return fmt.Errorf("ch: prepare %s: %w", table, err)
	}
	for _, r := range rows {
		if err := batch.Append(r...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("ch: append %s: %w", table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("ch: send %s: %w", table, err)
	}
	return nil
}

// Query runs a query and returns ch.Rows
func (c *CH) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// Ping checks server connectivity
func (c *CH) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

// Close closes resources
func (c *CH) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// clientInfo names this process in system.query_log
func clientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{"datemerge", tag},
		{"role", role},
		{"go", runtime.Version()},
		{"commit", version.Info().Commit},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{p[0], strings.TrimSpace(p[1])})
	}
	return info
}
