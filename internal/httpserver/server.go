package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/logger"
)

// Pinger is anything readiness can probe: the catalog pool, the cart storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// New builds a Server with the catalog and cart routes.
func New(addr string, log *logger.Logger, deps Deps) (*Server, error) {
	log = logger.OrNop(log)
	router, err := buildRouter(log, deps)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     log,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(checks) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "no dependencies configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		for name, p := range checks {
			if p == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": name + " not configured"})
				return
			}
			if err := p.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": name + " not reachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
