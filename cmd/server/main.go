package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/clanledger/internal/api"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/config"
	"infinite-experiment/clanledger/internal/db"
	"infinite-experiment/clanledger/internal/jobs"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/metrics"
	"infinite-experiment/clanledger/internal/routes"
	"infinite-experiment/clanledger/internal/workers"
)

const eventStreamMaxLen = 10000

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Clan ledger starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	gormDB, err := db.OpenORM(cfg)
	if err != nil {
		logging.Error("Failed to open database", "error", err.Error())
		log.Fatalf("❌ Failed to open database: %v", err)
	}
	sqlxDB, err := db.NewSQLX(gormDB)
	if err != nil {
		log.Fatalf("❌ Failed to wrap database for sqlx: %v", err)
	}
	defer sqlxDB.Close()

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	var (
		redisClient *redis.Client
		cache       common.CacheInterface
		publisher   common.EventPublisher = common.LogEventPublisher{}
	)
	if cfg.CacheBackend == config.CacheBackendRedis {
		redisClient = common.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword)
		cache = common.NewRedisCacheService(redisClient, "clanledger:")
		if cfg.EventStream != "" {
			publisher = common.NewRedisEventStream(redisClient, cfg.EventStream, eventStreamMaxLen)
			logging.Info("Publishing ledger events to Redis stream", "stream", cfg.EventStream)
		}
	} else {
		cache = common.NewCacheService(60, 600)
	}
	defer cache.Close()

	deps, err := api.InitDependencies(cfg, gormDB, sqlxDB, cache, publisher, metricsReg, time.Now)
	if err != nil {
		log.Fatalf("❌ Failed to initialize dependencies: %v", err)
	}

	var queue *common.RedisQueueService
	if cfg.ActivityQueue != "" {
		queue = common.NewRedisQueueService(redisClient, cfg.ActivityQueue, "activity-workers")
		deps.Queue = queue
	}

	upSince := time.Now()
	router := routes.RegisterRoutes(deps, routes.RouterOptions{
		UpSince:     upSince,
		RedisClient: redisClient,
		TrustedIPs:  []string{"127.0.0.1"}, // local bot
	})

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server starting", "addr", cfg.HTTPAddr, "environment", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	summary := jobs.NewWeeklySummaryJob(deps.Repo.Leaderboard, publisher, metricsReg, time.Now)
	g.Go(func() error {
		summary.RunScheduled(gctx, cfg.WeeklySummaryInterval)
		return nil
	})

	if queue != nil {
		hostname, _ := os.Hostname()
		worker := workers.NewActivityQueueWorker("activity-"+hostname, queue, deps.Ledger, metricsReg)
		g.Go(func() error {
			if err := worker.Start(gctx, int(cfg.QueueWorkers)); err != nil {
				logging.Error("Activity queue workers failed to start", "error", err.Error())
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server exited with error", "error", err.Error())
		os.Exit(1)
	}
	logging.Info("Server stopped")
}
