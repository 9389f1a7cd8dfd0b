// Package api serves the local JSON API used by the browser UI.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leofalp/promptcraft/catalog"
	"github.com/leofalp/promptcraft/core/builder"
	"github.com/leofalp/promptcraft/core/history"
	"github.com/leofalp/promptcraft/core/prompt"
	"github.com/leofalp/promptcraft/core/settings"
	"github.com/leofalp/promptcraft/internal/reference"
)

// Options holds the server's collaborators. Settings and Enhancer are
// required; the rest default to fresh instances.
type Options struct {
	Settings settings.Store
	Enhancer builder.Enhancer
	Prompts  *prompt.Store
	History  *history.History
	Fetcher  *reference.Fetcher
	Catalog  *catalog.Catalog
	Logger   *slog.Logger
}

// Server represents the API server
type Server struct {
	echo     *echo.Echo
	addr     string
	logger   *slog.Logger
	settings settings.Store
	prompts  *prompt.Store
	builders *builder.Set
	history  *history.History
	fetcher  *reference.Fetcher
	catalog  *catalog.Catalog
	now      func() time.Time
}

// NewServer creates a new API server listening on addr once started.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("settings store is required")
	}
	if opts.Enhancer == nil {
		return nil, fmt.Errorf("enhancer is required")
	}
	if opts.Prompts == nil {
		opts.Prompts = prompt.NewStore()
	}
	if opts.History == nil {
		opts.History = history.New(history.DefaultLimit)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = reference.New()
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	builders, err := builder.NewSet(opts.Prompts, opts.Enhancer, builder.WithLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("error creating builders: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				opts.Logger.ErrorContext(c.Request().Context(), "request", attrs...)
				return nil
			}
			opts.Logger.InfoContext(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:     e,
		addr:     addr,
		logger:   opts.Logger,
		settings: opts.Settings,
		prompts:  opts.Prompts,
		builders: builders,
		history:  opts.History,
		fetcher:  opts.Fetcher,
		catalog:  opts.Catalog,
		now:      time.Now,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	g := s.echo.Group("/api")

	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	g.GET("/catalog", s.getCatalog)

	g.GET("/settings", s.getSettings)
	g.PUT("/settings", s.putSettings)

	g.GET("/prompts", s.listPrompts)
	g.GET("/prompts/:tool", s.getPrompt)
	g.PATCH("/prompts/:tool", s.updatePrompt)
	g.POST("/prompts/:tool/clear", s.clearPrompt)

	g.POST("/prompts/:tool/modifiers", s.addModifier)
	g.DELETE("/prompts/:tool/modifiers/:tag", s.deleteModifier)
	g.PUT("/prompts/:tool/modifiers/:tag", s.editModifier)
	g.POST("/enhancers/sync", s.syncEnhancer)

	g.POST("/prompts/comfy/nodes", s.addNode)
	g.POST("/prompts/comfy/nodes/import", s.importNodes)
	g.DELETE("/prompts/comfy/nodes/:id", s.removeNode)
	g.PATCH("/prompts/comfy/nodes/:id", s.setNodeField)
	g.PUT("/prompts/a1111/params/:name", s.setParam)

	g.GET("/prompts/:tool/compose", s.composePrompt)
	g.POST("/prompts/:tool/copy", s.copyPrompt)
	g.GET("/prompts/:tool/export", s.exportPrompt)
	g.POST("/prompts/:tool/enhance", s.enhancePrompt)
	g.POST("/prompts/:tool/negative", s.autoNegative)
	g.POST("/prompts/:tool/reference", s.seedFromReference)

	g.GET("/history", s.listHistory)
	g.DELETE("/history", s.clearHistory)
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", slog.String("addr", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
