package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ridetrace/internal/api"
	"ridetrace/internal/app"
	"ridetrace/internal/config"
	"ridetrace/internal/logging"
	"ridetrace/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := logging.New("info", "console")
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize stores and services
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	defer a.Close()

	// Start workers
	scheduler := worker.NewScheduler(log.With().Str("component", "worker").Logger(),
		worker.RideFlushJob(a.Service),
	)
	scheduler.StartAllWorkers(ctx)

	// Setup and run API server
	runAPIServer(ctx, cfg, a, log)

	scheduler.Wait()
	if n, err := a.Service.FlushRides(context.Background()); err != nil {
		log.Error().Err(err).Msg("final ride flush failed")
	} else if n > 0 {
		log.Info().Int("rides", n).Msg("final ride flush")
	}
}

func newRouter(cfg config.Config, a *app.App, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure API routes
	api.SetupRouter(r, app.ConfigEcho(cfg), a.Service, log.With().Str("component", "api").Logger())
	return r
}

func runAPIServer(ctx context.Context, cfg config.Config, a *app.App, log zerolog.Logger) {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{Addr: cfg.Port, Handler: newRouter(cfg, a, log)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.Port).Msg("API server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("API server failed")
	}
}
