package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/picabord/website/blog/persistence"
	"github.com/picabord/website/internal/middleware"
	"github.com/picabord/website/internal/rest"
	"github.com/picabord/website/shared/config"
	"github.com/picabord/website/shared/metrics"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type ServeCmd struct {
	Port int `name:"port" short:"p" help:"Listen port (env PORT)."`
}

func (s *ServeCmd) Run(g *Globals) error {
	cfg := g.Config()
	if s.Port != 0 {
		cfg.Port = s.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

func newRouter(cfg *config.Config, reg *prom.Registry) *gin.Engine {
	recorder := metrics.NewPrometheusRecorder(reg)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware(log.Logger.With().Str("component", "http").Logger(), recorder))
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(router, rest.Services{
		Posts:    newPostService(cfg, recorder),
		Images:   persistence.NewImageRepository(cfg.UploadsDir),
		Sessions: middleware.NewSessionStore(cfg.CMSUsername, cfg.CMSPassword),
		SiteURL:  cfg.SiteURL,
		Metrics:  metrics.HTTPHandler(reg),
	})
	return router
}

func serve(ctx context.Context, cfg *config.Config) error {
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if !cfg.CMSEnabled() {
		log.Warn().Msg("CMS_PASSWORD is not set, CMS login is disabled")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(cfg, reg),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("content_dir", cfg.ContentDir).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
