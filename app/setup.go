package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EnmanuelReynoso23/el-pensum/api"
	"github.com/EnmanuelReynoso23/el-pensum/config"
	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/EnmanuelReynoso23/el-pensum/router"
	"github.com/EnmanuelReynoso23/el-pensum/services/cron"
	"github.com/EnmanuelReynoso23/el-pensum/services/storage"
	"github.com/EnmanuelReynoso23/el-pensum/utils"
	"github.com/EnmanuelReynoso23/el-pensum/utils/cache"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

// Bootstrap loads the environment, the configuration and the logger
func Bootstrap() (*config.Config, *zap.Logger, error) {
	if err := config.LoadENV(); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Get()
	if err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// OpenDatabase connects to PostgreSQL and migrates the schema
func OpenDatabase(cfg *config.Config, logger *zap.Logger) (*database.GORMStore, error) {
	store, err := database.StartGORM(cfg.Database, cfg.IsProduction(), logger)
	if err != nil {
		return nil, fmt.Errorf("%w (check that PostgreSQL is running at %s:%s)", err, cfg.Database.Host, cfg.Database.Port)
	}

	if err := store.Init(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// OpenCatalog returns the comparison catalog, cached in Redis when a cache is given
func OpenCatalog(cfg *config.Config, store *database.GORMStore, redisCache *cache.RedisCache, logger *zap.Logger) database.Catalog {
	catalog := database.NewCatalogStore(store.DB())
	if redisCache == nil {
		return catalog
	}
	return database.NewCachedCatalog(catalog, redisCache, cfg.Redis.NameCacheTTL, logger.Named("catalog"))
}

// ConnectRedis connects when REDIS_URL is set. A failed connection only
// disables the features that need Redis.
func ConnectRedis(cfg *config.Config, logger *zap.Logger) *cache.RedisCache {
	if cfg.Redis.URL == "" {
		logger.Info("REDIS_URL not set, running without Redis")
		return nil
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		logger.Warn("failed to connect to Redis, running without it", zap.Error(err))
		return nil
	}
	return redisCache
}

func SetupAndRunServer() error {
	cfg, logger, err := Bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := OpenDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	redisCache := ConnectRedis(cfg, logger)
	if redisCache != nil {
		defer redisCache.Close()
	}

	var objects storage.ObjectStore
	if cfg.Spaces.Enabled() {
		spaces, err := storage.NewSpacesClient(cfg.Spaces)
		if err != nil {
			return err
		}
		objects = spaces
	} else {
		logger.Warn("Spaces credentials not set, image and syllabus uploads disabled")
	}

	// Cron jobs (enabled unless CRON_ENABLED=false)
	var cronManager *cron.CronManager
	if cfg.Cron.Enabled {
		cronManager = cron.NewCronManager(store.DB(), objects, cfg.Cron.OrphanGraceTime, logger)
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			logger.Warn("failed to start cron jobs", zap.Error(err))
			cronManager = nil
		}
	}

	server := api.NewAPIServer(fmt.Sprintf(":%d", cfg.Server.Port), cfg.Server, logger)
	if err := router.SetupRoutes(server.GetEngine(), router.Dependencies{
		Config:  cfg,
		Store:   store,
		Cache:   redisCache,
		Catalog: OpenCatalog(cfg, store, redisCache, logger),
		Objects: objects,
		Logger:  logger,
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if cronManager != nil {
			cronManager.Stop()
		}
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if cronManager != nil {
		cronManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
