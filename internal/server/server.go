package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/tempo-lab/project-tempo/internal/api/v1"
	"github.com/tempo-lab/project-tempo/internal/metrics"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	db     *sql.DB
}

// RouteRegistrar is implemented by components that mount their own routes.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

func New(addr string, db *sql.DB, mode string, maxBodyBytes int64) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), metrics.Middleware(), limitBody(maxBodyBytes))

	s := &Server{
		Engine: r,
		Addr:   addr,
		db:     db,
	}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return s
}

// Mount registers a component's routes on the engine.
func (s *Server) Mount(components ...RouteRegistrar) {
	for _, c := range components {
		c.RegisterRoutes(s.Engine)
	}
}

func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC()
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			slog.Error("[Server] Health check failed: database unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, v1.Health{
				Status:    "unhealthy",
				Database:  "unreachable",
				CheckedAt: now,
			})
			return
		}
	}

	c.JSON(http.StatusOK, v1.Health{
		Status:    "healthy",
		Database:  "connected",
		CheckedAt: now,
	})
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] HTTP server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
