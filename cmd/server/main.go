package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rookwood101/irish-snap/internal/auth"
	"github.com/rookwood101/irish-snap/internal/cache"
	"github.com/rookwood101/irish-snap/internal/config"
	"github.com/rookwood101/irish-snap/internal/database"
	"github.com/rookwood101/irish-snap/internal/game"
	"github.com/rookwood101/irish-snap/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Fatal("failed to connect to database")
		}
		defer database.Close()
		logrus.Info("round archive enabled")
	} else {
		logrus.Warn("DATABASE_URL not set, round archive disabled")
	}

	if cfg.RedisAddr != "" {
		if err := cache.Init(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			logrus.WithError(err).Fatal("failed to connect to redis")
		}
		defer cache.Close()
		logrus.Info("action historian enabled")
	} else {
		logrus.Warn("REDIS_ADDR not set, action historian disabled")
	}

	authSvc := auth.New(cfg.JWTSecret, 0)
	session := game.New()
	srv := server.New(session, authSvc, cfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("http server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown failed")
	}
}
