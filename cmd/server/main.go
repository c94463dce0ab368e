// Command server exposes the sync over HTTP: trigger runs, poll
// status, fetch the latest report. Intended for deployments where the
// sync is driven by a scheduler or an operator dashboard instead of
// cron invoking cmd/sync.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/catalog-sync/internal/api"
	"github.com/ignite/catalog-sync/internal/config"
	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/pkg/distlock"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
	"github.com/ignite/catalog-sync/internal/pkg/retry"
	"github.com/ignite/catalog-sync/internal/report"
	"github.com/ignite/catalog-sync/internal/repository/postgres"
	"github.com/ignite/catalog-sync/internal/sync"
	"github.com/ignite/catalog-sync/internal/xbz"
)

const lockKey = "catalog-sync:run"

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		os.Exit(1)
	}

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("failed to open database", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err.Error())
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	runner := newRunner(cfg, db, redisClient)
	server := api.NewServer(runner)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("control API listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}

// newRunner builds the full sync pipeline behind an api.Runner: run
// lock, controller, CSV sink, run history and optional S3 upload.
func newRunner(cfg *config.Config, db *sql.DB, redisClient *redis.Client) api.Runner {
	return func(ctx context.Context) (*sync.RunReport, error) {
		lock := distlock.New(redisClient, db, lockKey, 30*time.Minute)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !acquired {
			return nil, errors.New("another sync run is in progress")
		}
		defer lock.Release(context.Background())

		sink, err := report.NewCSVSink(cfg.Report.Dir)
		if err != nil {
			return nil, fmt.Errorf("create report sink: %w", err)
		}
		defer sink.Close()

		omieClient := omie.NewClient(cfg.Omie)
		controller := sync.NewController(
			xbz.NewClient(cfg.XBZ),
			omieClient,
			omie.NewWriter(omieClient, retry.Default()),
			sink,
			sync.Options{
				MaxInserts: cfg.Sync.MaxInserts,
				WriteDelay: cfg.Sync.WriteDelay(),
				Observer:   sync.LogObserver{},
			},
		)

		runReport, runErr := controller.Run(ctx)

		if db != nil && runReport != nil {
			if err := postgres.NewRunRepo(db).Save(context.Background(), runReport); err != nil {
				logger.Warn("failed to persist run history", "error", err.Error())
			}
		}
		if cfg.Report.S3Bucket != "" && runReport != nil {
			uploadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			uploader, err := report.NewUploader(uploadCtx, cfg.Report.S3Bucket, cfg.Report.S3Region,
				cfg.Report.AWSAccessKey, cfg.Report.AWSSecretKey)
			if err != nil {
				logger.Warn("failed to init report upload", "error", err.Error())
			} else if err := uploader.UploadRunArtifacts(uploadCtx, runReport.RunID, sink.Dir()); err != nil {
				logger.Warn("report upload incomplete", "error", err.Error())
			}
		}

		return runReport, runErr
	}
}
