package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"syncplayer/internal/platform/config"
	"syncplayer/internal/platform/logger"
	"syncplayer/internal/platform/metrics"
	"syncplayer/internal/platform/ratelimit"
	"syncplayer/internal/session"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	playerConfig := config.GetEnv("PLAYER_CONFIG", "")
	eventLimit := config.GetEnvInt("EVENT_RATE_LIMIT", 1200)
	eventWindow := config.GetEnvDuration("EVENT_RATE_WINDOW", time.Minute)

	log := logger.New(logLevel, logFormat)

	settings, err := config.LoadPlayerSettings(playerConfig)
	if err != nil {
		log.Error("player config", "error", err)
		os.Exit(1)
	}

	repo := session.NewInMemoryRepository()
	met := metrics.New()
	svc := session.NewService(repo, settings, log, met)
	h := session.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(svc.ActiveCount()) }).ServeHTTP(w, r)
	})
	h.Mount(r, ratelimit.PerSession(eventLimit, eventWindow))

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"skip_forward_seconds", settings.SkipForward,
		"skip_backward_seconds", settings.SkipBackward,
		"drift_tolerance_seconds", settings.DriftTolerance,
		"event_rate_limit", eventLimit,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped", "open_sessions", svc.ActiveCount())
}
