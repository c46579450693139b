// Package server exposes the assistant and the resolution pipeline over a
// JSON HTTP API.
//
// Routes:
//
//	GET  /healthz      liveness and catalog size
//	GET  /v1/functions registered query functions
//	POST /v1/resolve   call expression -> query text (no execution)
//	POST /v1/dates     date phrase -> inclusive range
//	POST /v1/ask       question -> query -> rows
//	GET  /v1/history   recent answers
//	GET  /metrics      prometheus exposition
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// Server owns the gin engine and its handlers.
type Server struct {
	assistant *assistant.Assistant
	metrics   *metrics.Metrics
	log       *zap.Logger
	engine    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts /metrics for m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the access and error logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New builds the router. Callers choose the gin mode before calling New.
func New(a *assistant.Assistant, opts ...Option) *Server {
	s := &Server{assistant: a, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.registerRoutes(r)
	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	v1.GET("/functions", s.handleFunctions)
	v1.POST("/resolve", s.handleResolve)
	v1.POST("/dates", s.handleDates)
	v1.POST("/ask", s.handleAsk)
	v1.GET("/history", s.handleHistory)

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for at most shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// requestID propagates or assigns X-Request-ID.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
