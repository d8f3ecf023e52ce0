package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"datemerge/internal/platform/config"
	"datemerge/internal/platform/logger"
)

// Server is a thin wrapper over chi and the stdlib http.Server
type Server struct {
	addr  string
	grace time.Duration
	mux   *chi.Mux
	srv   *stdhttp.Server
}

// NewServer reads PORT and SHUTDOWN_GRACE from cfg, PORT is 4000, :4000 or host:4000
// opts receive the *chi.Mux before any route is mounted
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := cfg.MayString("PORT", ":4000")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr:  addr,
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		mux:   m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns a Router facade over the chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is done, then drains in-flight requests for the grace period
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	log.Info().Dur("grace", s.grace).Msg("http shutting down")
	return s.srv.Shutdown(sctx)
}
