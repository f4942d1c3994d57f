// Package api serves the correlation payloads as JSON, a server-rendered
// HTML dashboard and PNG comparison charts.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/matrix"
)

// CorrelationService is what the handlers need from the service layer.
type CorrelationService interface {
	Assets() []market.Asset
	Matrix(ctx context.Context, r market.Range) (*market.CorrelationMatrix, error)
	Comparison(ctx context.Context, a, b string, r market.Range) (*market.Comparison, error)
	Insights(ctx context.Context, r market.Range) (*market.Insights, error)
}

// HealthChecker reports the state of an optional backing service.
type HealthChecker interface {
	Ping(ctx context.Context) string
}

type Server struct {
	svc      CorrelationService
	cache    HealthChecker
	logger   *slog.Logger
	renderer *matrix.Renderer
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCacheHealth includes the cache state in /api/health.
func WithCacheHealth(h HealthChecker) Option {
	return func(s *Server) { s.cache = h }
}

func NewServer(svc CorrelationService, opts ...Option) *Server {
	s := &Server{
		svc:      svc,
		logger:   slog.Default(),
		renderer: matrix.NewRenderer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(s.logger))
	router.Use(cors.Default())

	addRoutes(router, s)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
