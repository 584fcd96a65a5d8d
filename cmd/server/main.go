package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"model-bundle-service/internal/adapters/primary/http/handlers"
	"model-bundle-service/internal/adapters/primary/http/middleware"
	"model-bundle-service/internal/adapters/secondary/fsstore"
	"model-bundle-service/internal/adapters/secondary/postgres"
	"model-bundle-service/internal/config"
	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary Adapters
	store, err := fsstore.New(cfg.Store.Root)
	if err != nil {
		log.Fatalf("open bundle store: %v", err)
	}
	log.WithField("root", store.Root()).Info("bundle store opened")

	bundleRepo := postgres.NewBundleRepository(pool)

	// Core Services
	bundleSvc := services.NewBundleService(bundleRepo, store)
	packSvc := services.NewPackService(store, bundleRepo)

	// Reconcile registry with store contents, then keep watching for bundles
	// saved locally by packctl.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	if added, err := bundleSvc.Sync(context.Background()); err != nil {
		log.WithError(err).Warn("initial store sync failed")
	} else if added > 0 {
		log.WithField("indexed", added).Info("initial store sync completed")
	}

	if cfg.Store.WatchEnabled {
		watcher := fsstore.NewWatcher(store, func(ctx context.Context, bundle *domain.Bundle) {
			if err := bundleSvc.Index(ctx, bundle); err != nil {
				log.WithError(err).WithField("bundle", bundle.Tag()).Error("index discovered bundle")
			}
		})
		go func() {
			if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
				log.WithError(err).Error("store watcher stopped")
			}
		}()
		log.Info("store watcher started")
	} else {
		log.Info("store watcher disabled")
	}

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(bundleSvc, packSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.Logger.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
		})
	}
}
