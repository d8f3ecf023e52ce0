// Package logger wraps zerolog with a process root logger and request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"datemerge/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level       string
	Format      string // console or json
	Service     string
	Writer      io.Writer
	WithCaller  bool
	SampleEvery int
}

// FromEnv reads LOG_* through the raw view, config logs through this package
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       rc.Get("LEVEL", "debug"),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", ""),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Get returns the root logger, initialising it from the environment on first use
func Get() *Logger {
	Init(FromEnv())
	return root.Load()
}

// Init sets the root logger, only the first call has an effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opt)
		root.Store(&l)
	})
}

// New builds a logger without touching the root
func New(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opt.Writer != nil}
	}

	zc := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		zc = zc.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		zc = zc.Str("service", opt.Service)
	}
	if opt.WithCaller {
		zc = zc.Caller()
	}
	l := zc.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel falls back to debug
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey struct{}

// WithContext stores l as the request logger of ctx
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// C returns the request logger of ctx, or the root logger
func C(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Get()
}

// Named returns a child of the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
