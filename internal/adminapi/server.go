// Package adminapi provides a read-only REST admin surface for both the
// proxy and the nameserver: current throughput/bitrate/connection state,
// fragment history, host resource usage, and a Prometheus /metrics
// endpoint. It has no equivalent in original_source — it is ambient
// observability supplementing the fixed-format activity logs, grounded on
// the teacher's internal/api package (gin.Engine setup, slog request
// middleware, swaggo annotations) and reusing the same dependency set for
// the same purpose.
package adminapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelnet/vcdn/internal/metrics"
	"github.com/kestrelnet/vcdn/internal/nameserver"
	"github.com/kestrelnet/vcdn/internal/proxy"
)

// ProxyStatsFunc returns a snapshot of the running proxy's state.
type ProxyStatsFunc func() proxy.Stats

// NameserverStatsFunc returns a snapshot of the running nameserver's state.
type NameserverStatsFunc func() nameserver.Stats

// Server wraps an http.Server serving the admin API.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// Deps collects the optional data sources a Server can expose. Exactly one
// of ProxyStats / NameserverStats is expected to be set, matching which
// binary (cmd/proxy or cmd/nameserver) constructs the Server; History is
// proxy-only and may be nil.
type Deps struct {
	ProxyStats      ProxyStatsFunc
	NameserverStats NameserverStatsFunc
	History         *metrics.Store
}

// New builds a Server listening on addr, mirroring api.New in the teacher
// repository: gin.ReleaseMode, a recovery middleware, and a slog request
// logger. Every route is registered regardless of Deps; the handlers
// report only the data sources that were supplied.
func New(addr string, deps Deps, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(slogRequestLogger(logger))

	h := &handler{deps: deps, startTime: time.Now(), logger: logger}
	registerRoutes(engine, h)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer, startTime: h.startTime}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// ListenAndServe blocks serving the admin API until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the admin API.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func slogRequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if logger != nil {
			logger.Info("admin api request",
				"method", method,
				"path", path,
				"status", c.Writer.Status(),
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		}
	}
}
