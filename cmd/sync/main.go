// Command sync runs one catalog sync pass: fetch the XBZ catalog,
// diff it against Omie, and insert the missing products with tiered
// pricing. With -update it instead repushes price/stock/dimension
// data for products already present in Omie.
//
// Exit codes: 0 completed, 1 source unavailable or internal error,
// 2 target blocked before any write, 3 completed but cut short by a
// rate limit (rerun later to continue).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

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
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	update := flag.Bool("update", false, "reprice products already in the target instead of inserting")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, cfg, *update))
}

func run(ctx context.Context, cfg *config.Config, update bool) int {
	xbzClient := xbz.NewClient(cfg.XBZ)
	omieClient := omie.NewClient(cfg.Omie)

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			logger.Error("failed to open database", "error", err.Error())
			return 1
		}
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err.Error())
			return 1
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	lock := distlock.New(redisClient, db, lockKey, 30*time.Minute)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		logger.Error("failed to acquire run lock", "error", err.Error())
		return 1
	}
	if !acquired {
		logger.Warn("another sync run is in progress, exiting")
		return 1
	}
	defer lock.Release(context.Background())

	if update {
		return runReprice(ctx, cfg, xbzClient, omieClient)
	}

	sink, err := report.NewCSVSink(cfg.Report.Dir)
	if err != nil {
		logger.Error("failed to create report sink", "error", err.Error())
		return 1
	}
	defer sink.Close()

	controller := sync.NewController(
		xbzClient,
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
		repo := postgres.NewRunRepo(db)
		if err := repo.Save(context.Background(), runReport); err != nil {
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

	if runErr != nil {
		logger.Error("sync run failed", "error", runErr.Error())
	}
	if runReport == nil {
		return 1
	}

	fmt.Printf("run %s finished: status=%s inserted=%d skipped=%d failed=%d remaining=%d\n",
		runReport.RunID, runReport.Status, runReport.Inserted, runReport.Skipped,
		runReport.Failed, runReport.Remaining)

	switch runReport.Status {
	case sync.RunCompleted:
		return 0
	case sync.RunCompletedRateLimited:
		return 3
	case sync.RunAbortedTargetBlocked:
		return 2
	default:
		return 1
	}
}

// runReprice pushes fresh price, stock, weight and dimension data for
// every XBZ product that already exists in Omie.
func runReprice(ctx context.Context, cfg *config.Config, xbzClient *xbz.Client, omieClient *omie.Client) int {
	products, err := xbzClient.FetchAll(ctx)
	if err != nil {
		logger.Error("failed to fetch source catalog", "error", err.Error())
		return 1
	}

	existing, err := omieClient.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list target catalog", "error", err.Error())
		return 1
	}
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.CodigoProdutoIntegracao] = struct{}{}
	}

	var toUpdate []xbz.Product
	for _, p := range products {
		if _, ok := known[p.CodigoComposto]; ok {
			toUpdate = append(toUpdate, p)
		}
	}
	logger.Info("repricing existing products",
		"source_total", len(products), "target_total", len(existing), "to_update", len(toUpdate))

	result := sync.RepriceExisting(ctx, omieClient, toUpdate, sync.Options{
		WriteDelay: cfg.Sync.WriteDelay(),
	})
	fmt.Printf("reprice finished: updated=%d failed=%d\n", result.Updated, result.Failed)
	if ctx.Err() != nil {
		return 1
	}
	return 0
}
