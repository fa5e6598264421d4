package main

import (
	"aoi-bknd/internal/config"
	"aoi-bknd/internal/database"
	"aoi-bknd/internal/localcache"
	"aoi-bknd/internal/logger"
	"aoi-bknd/internal/routes"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	cache := newCache(cfg, logr)

	r := routes.NewRouter(db, cache, cfg, logr)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	_ = db.Close()
	logr.Info("server exited gracefully")
}

// newCache picks the local durable cache backend. A broken backend never
// stops startup; the cache degrades to in-memory with a logged warning so
// the remote store keeps working.
func newCache(cfg *config.Config, logr *logger.Logger) localcache.Store {
	switch cfg.CacheBackend {
	case "redis":
		cache, err := localcache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			logr.Warn("redis cache unavailable, falling back to memory", zap.Error(err))
			return localcache.NewMemory()
		}
		return cache
	default:
		cache, err := localcache.NewFile(cfg.CacheDir)
		if err != nil {
			logr.Warn("file cache unavailable, falling back to memory", zap.Error(err))
			return localcache.NewMemory()
		}
		return cache
	}
}
