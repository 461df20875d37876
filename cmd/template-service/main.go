// cmd/template-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/archive"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/config"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/database"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/httpclient"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/observability"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/validation"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/popularity"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/layout"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/puzzle/template"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/search"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/server"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting template service...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	// Recreate the logger with the configured level and format.
	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry (archive only) ---
	var pg *database.PostgresClient
	if cfg.Archive.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (search only) ---
	var esClient *database.ElasticsearchClient
	if cfg.Search.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Load Shape Registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("shape registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	zapLog.Info("Shape registry loaded",
		zap.String("path", cfg.Registry.Path),
		zap.String("version", reg.Version),
		zap.Int("shapes", len(reg.Shapes)),
	)

	// --- Build Generation Core ---
	engine, err := layout.NewEngine(layout.Geometry{
		CellSize:     cfg.Geometry.CellSize,
		TabSize:      cfg.Geometry.TabSize,
		NeckWidth:    cfg.Geometry.NeckWidth,
		CornerRadius: cfg.Geometry.CornerRadius,
	})
	if err != nil {
		zapLog.Fatal("layout engine init failed", zap.Error(err))
	}

	cache, err := template.NewCache(template.Config{
		Tiers:      cfg.Tiers,
		MaxEntries: cfg.Cache.MaxEntries,
	}, engine, log)
	if err != nil {
		zapLog.Fatal("template cache init failed", zap.Error(err))
	}
	warmer := template.NewWarmer(cache, reg, log)

	tracker := popularity.NewTracker(redis.Client, log)

	// --- Init Template Archive ---
	var store *archive.Store
	if cfg.Archive.Enabled {
		store = archive.NewStore(pg.DB, log)
		err = retryWithBackoff(func() error {
			return store.EnsureSchema(ctx)
		}, 5, 2*time.Second, zapLog, "Archive schema setup")
		if err != nil {
			zapLog.Fatal("archive schema failed after retries", zap.Error(err))
		}
		zapLog.Info("Template archive ready")
	}

	// --- Init Shape Search ---
	var searchSvc *search.Service
	if cfg.Search.Enabled {
		searchSvc = search.NewService(esClient.Client, cfg.Search.Index, log)
		if cfg.Search.SeedOnStart {
			if err := searchSvc.IndexShapes(ctx, reg.Shapes); err != nil {
				zapLog.Warn("Shape catalog seeding failed", zap.Error(err))
			}
		}
	}

	// --- Warm the Cache ---
	if cfg.Warming.Enabled {
		warmCache(ctx, cfg, warmer, tracker, store, obs, zapLog)
	}

	// --- Start API Server ---
	srv, err := server.New(server.Options{
		Cache:         cache,
		Warmer:        warmer,
		Registry:      reg,
		Popularity:    tracker,
		Archive:       store,
		Search:        searchSvc,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Template service shut down cleanly")
}

// warmCache pregenerates templates from every configured source:
// combinations pinned in config, recent archive selections, the redis
// popularity ranking, and an optional merchandising feed.
func warmCache(ctx context.Context, cfg *config.Config, warmer *template.Warmer, tracker *popularity.Tracker, store *archive.Store, obs *observability.Observability, zapLog *zap.Logger) {
	ctx, span := obs.StartSpan(ctx, "cache.warm")
	defer span.End()

	if len(cfg.Warming.Combinations) > 0 {
		built, skipped := warmer.PregeneratePopular(ctx, cfg.Warming.Combinations, "config")
		zapLog.Info("Configured combinations warmed", zap.Int("built", built), zap.Int("skipped", skipped))
	}

	if store != nil && cfg.Warming.RestoreLimit > 0 {
		combos, err := store.ListRecentSelections(ctx, cfg.Warming.RestoreLimit)
		if err != nil {
			zapLog.Warn("Archive restore skipped", zap.Error(err))
		} else {
			built, skipped := warmer.PregeneratePopular(ctx, combos, "archive")
			zapLog.Info("Archived selections warmed", zap.Int("built", built), zap.Int("skipped", skipped))
		}
	}

	if cfg.Warming.TopN > 0 {
		combos, err := tracker.Top(ctx, cfg.Warming.TopN)
		if err != nil {
			zapLog.Warn("Popularity warming skipped", zap.Error(err))
		} else {
			built, skipped := warmer.PregeneratePopular(ctx, combos, "popularity")
			zapLog.Info("Popular combinations warmed", zap.Int("built", built), zap.Int("skipped", skipped))
		}
	}

	if cfg.Warming.FeedURL != "" {
		if !validation.ValidateURL(cfg.Warming.FeedURL) {
			zapLog.Warn("Warming feed URL rejected", zap.String("url", cfg.Warming.FeedURL))
			return
		}

		client := httpclient.NewClient(config.GetDuration(cfg.Warming.FeedTimeout))
		var feed struct {
			Combinations [][]string `json:"combinations"`
		}
		if err := client.GetJSON(ctx, cfg.Warming.FeedURL, &feed); err != nil {
			zapLog.Warn("Warming feed fetch failed", zap.String("url", cfg.Warming.FeedURL), zap.Error(err))
			return
		}

		built, skipped := warmer.PregeneratePopular(ctx, feed.Combinations, "feed")
		zapLog.Info("Feed combinations warmed", zap.Int("built", built), zap.Int("skipped", skipped))
	}
}
