// Package server exposes the recipe service over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"recipeagent"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	defaultName    = "Recipe Agent API"
	defaultVersion = "1.0.0"
)

// Server owns the gin engine and the underlying http.Server.
type Server struct {
	cfg        recipeagent.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
}

func New(cfg recipeagent.ServerConfig, svc recipeService, info Info) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("server: recipe service is required")
	}
	if info.Name == "" {
		info.Name = defaultName
	}
	if info.Version == "" {
		info.Version = defaultVersion
	}
	if info.Backends == nil {
		info.Backends = []string{}
	}

	s := &Server{cfg: cfg, engine: newEngine(cfg, &handler{svc: svc, info: info})}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func newEngine(cfg recipeagent.ServerConfig, h *handler) *gin.Engine {
	engine := gin.New()
	engine.Use(requestID(), recovery(), metrics(), logging(), cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	engine.GET("/", h.root)
	engine.GET("/health", h.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = int(cfg.RateLimit)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(burst, 1))
	}

	agent := engine.Group("/agent", rateLimit(limiter))
	agent.POST("/recipes", h.listRecipes)
	agent.POST("/recipe/details", h.recipeDetails)

	return engine
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID, headerRecipeSource},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// Handler returns the configured engine, used by tests and the Lambda adapter.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP: server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		slog.Info("HTTP: shutdown signal received")
		return s.Shutdown(context.WithoutCancel(ctx))
	case err := <-errChan:
		return err
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	slog.Info("HTTP: server stopped")
	return nil
}
