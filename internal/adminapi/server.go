// Package adminapi serves a small HTTP API for operating a running room.
package adminapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/haxroom/internal/config"
	"github.com/cory-johannsen/haxroom/internal/history"
	"github.com/cory-johannsen/haxroom/internal/room"
)

// Server is the admin HTTP server.
type Server struct {
	room    *room.Room
	history history.Store
	logger  *zap.Logger
	started time.Time

	router *gin.Engine
	http   *http.Server
}

// New builds the server and its routes. store may be nil, in which case the
// history route answers 404.
//
// Precondition: r and logger must be non-nil.
func New(cfg config.AdminConfig, r *room.Room, store history.Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		room:    r,
		history: store,
		logger:  logger,
		started: time.Now(),
	}
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.logRequests())
	s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Stop.
func (s *Server) Start() error {
	s.logger.Info("admin api listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin api: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("admin api shutdown", zap.Error(err))
	}
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/room", s.getRoom)
		v1.GET("/players", s.getPlayers)
		v1.GET("/history/:ip", s.getHistory)
		v1.POST("/announce", s.announce)
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("admin request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
