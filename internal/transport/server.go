// Package transport exposes interview sessions over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/session"
	"github.com/spigell/hh-interviewer/internal/summary"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Interviews is the part of the session service the handlers use.
type Interviews interface {
	Create(ctx context.Context, candidate, jobID string) (*interview.State, error)
	Disclose(ctx context.Context, id string) (*interview.State, string, error)
	Consent(ctx context.Context, id, reply string) (*interview.State, error)
	NextQuestion(ctx context.Context, id string) (*session.Question, error)
	Answer(ctx context.Context, id, answer string) (*interview.State, *interview.Turn, error)
	Skip(ctx context.Context, id, reason string) (*interview.State, error)
	Finish(ctx context.Context, id string) (*interview.State, error)
	Withdraw(ctx context.Context, id, reason string) (*interview.State, error)
	Get(ctx context.Context, id string) (*interview.State, error)
	Report(ctx context.Context, id string) (*summary.Report, error)
}

type Server struct {
	srv    *http.Server
	cfg    Config
	logger *zap.Logger
}

// New builds the server. A nil gatherer disables /metrics.
func New(cfg Config, svc Interviews, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg, svc, gatherer, logger),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		cfg:    cfg,
		logger: logger.With(zap.String("component", "http")),
	}
}

func NewRouter(cfg Config, svc Interviews, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	h := &handlers{svc: svc, limit: cfg.MaxBodyBytes, logger: logger}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/interviews", h.create)
	r.Route("/interviews/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Get("/report", h.report)
		r.Post("/disclosure", h.disclose)
		r.Post("/consent", h.consent)
		r.Post("/questions/next", h.nextQuestion)
		r.Post("/answers", h.answer)
		r.Post("/skip", h.skip)
		r.Post("/finish", h.finish)
		r.Post("/withdraw", h.withdraw)
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("http server started", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server stopping")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
