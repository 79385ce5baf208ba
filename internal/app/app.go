package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	redisClient "github.com/redis/go-redis/v9"

	"github.com/sm8ta/ridewise/internal/adapter/catalog"
	"github.com/sm8ta/ridewise/internal/adapter/filestore"
	"github.com/sm8ta/ridewise/internal/adapter/handler/http"
	"github.com/sm8ta/ridewise/internal/adapter/logger"
	"github.com/sm8ta/ridewise/internal/adapter/memory"
	"github.com/sm8ta/ridewise/internal/adapter/minio"
	"github.com/sm8ta/ridewise/internal/adapter/nhtsa"
	"github.com/sm8ta/ridewise/internal/adapter/postgres"
	"github.com/sm8ta/ridewise/internal/adapter/prometheus"
	"github.com/sm8ta/ridewise/internal/adapter/redis"
	"github.com/sm8ta/ridewise/internal/adapter/sqlite"
	"github.com/sm8ta/ridewise/internal/config"
	"github.com/sm8ta/ridewise/internal/core/ports"
	"github.com/sm8ta/ridewise/internal/core/repository"
	"github.com/sm8ta/ridewise/internal/core/services"
	"github.com/sm8ta/ridewise/internal/core/storage"
)

type Services struct {
	Bikes       *services.BikeService
	ServiceLog  *services.ServiceLogService
	Stats       *services.StatsService
	Preferences *services.PreferencesService
	Data        *services.DataService
	Lookup      *services.LookupService
}

type App struct {
	Config      *config.Container
	Logger      ports.LoggerPort
	Metrics     *prometheus.PrometheusAdapter
	DB          *sql.DB
	SQLite      *sqlite.Store
	RedisClient *redisClient.Client
	Cache       ports.CachePort
	Store       *storage.Store
	Repository  *repository.Repository
	Services    Services
	HTTPRouter  *http.Router
}

// NewCore wires storage and services without the HTTP layer.
func NewCore(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	logOutput := os.Stdout
	if cfg.Log.Output == "stderr" {
		logOutput = os.Stderr
	}
	loggerAdapter := logger.NewLoggerAdapterWithWriter(logOutput, cfg.App.Env, cfg.Log.Level)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app":     cfg.App.Name,
		"env":     cfg.App.Env,
		"storage": cfg.Storage.Driver,
	})

	a := &App{
		Config:  cfg,
		Logger:  loggerAdapter,
		Metrics: prometheus.NewPrometheusAdapter(),
	}

	// Set redis
	if cfg.Redis.Address != "" {
		conn := redisClient.NewClient(&redisClient.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := conn.Ping(ctx).Result(); err != nil {
			loggerAdapter.Warn("Redis unavailable", map[string]interface{}{
				"error": err.Error(),
				"addr":  cfg.Redis.Address,
			})
			conn.Close()
		} else {
			a.RedisClient = conn
		}
	}

	// Cache
	if a.RedisClient != nil {
		a.Cache = redis.NewRedisAdapter(a.RedisClient)
	} else {
		a.Cache = memory.New()
	}

	// Document store
	kv, err := a.openBackend(ctx)
	if err != nil {
		loggerAdapter.Warn("Storage backend unavailable, keeping data in memory", map[string]interface{}{
			"error":  err.Error(),
			"driver": cfg.Storage.Driver,
		})
		kv = nil
	}
	a.Store = storage.Open(ctx, kv, storage.Options{
		Key:     cfg.Storage.Key,
		Backend: cfg.Storage.Driver,
		Logger:  loggerAdapter,
		Metrics: a.Metrics,
	})

	// Repository
	a.Repository = repository.New(a.Store, loggerAdapter)
	a.Repository.Init(ctx)

	// Validate
	validate := services.NewValidator()

	// Lookups
	types := catalog.New(catalog.Options{URL: cfg.Catalog.URL, Path: cfg.Catalog.Path}, loggerAdapter.With("adapter", "catalog"))
	registry, err := nhtsa.New(cfg.NHTSA.URL, loggerAdapter.With("adapter", "nhtsa"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init vehicle registry: %w", err)
	}

	// Backups
	var backups ports.BackupStorage
	if cfg.Minio.Endpoint != "" {
		client, err := minio.New(ctx, minio.Config{
			Endpoint:        cfg.Minio.Endpoint,
			AccessKeyID:     cfg.Minio.AccessKeyID,
			SecretAccessKey: cfg.Minio.SecretAccessKey,
			UseSSL:          cfg.Minio.UseSSL,
			Bucket:          cfg.Minio.Bucket,
			Region:          cfg.Minio.Region,
		}, loggerAdapter.With("adapter", "minio"))
		if err != nil {
			loggerAdapter.Warn("Backups disabled", map[string]interface{}{
				"error":    err.Error(),
				"endpoint": cfg.Minio.Endpoint,
			})
		} else {
			backups = client
		}
	}

	// Services
	a.Services = Services{
		Bikes:       services.NewBikeService(a.Repository, loggerAdapter, validate),
		ServiceLog:  services.NewServiceLogService(a.Repository, types, loggerAdapter, validate),
		Stats:       services.NewStatsService(a.Repository, loggerAdapter),
		Preferences: services.NewPreferencesService(a.Repository, loggerAdapter, validate),
		Data:        services.NewDataService(a.Repository, backups, loggerAdapter),
		Lookup:      services.NewLookupService(types, registry, a.Cache, loggerAdapter),
	}

	return a, nil
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	a, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// HTTP Handlers
	var tokenService ports.TokenService
	if cfg.Token.Secret != "" {
		tokenService = http.NewJWTTokenService(cfg.Token.Secret, a.Logger)
	} else {
		a.Logger.Warn("TOKEN_SECRET not set, API is open", nil)
	}
	bikeHandler := http.NewBikeHandler(a.Services.Bikes, a.Logger, a.Metrics)
	serviceHandler := http.NewServiceHandler(a.Services.ServiceLog, a.Logger, a.Metrics)
	dataHandler := http.NewDataHandler(a.Services.Stats, a.Services.Preferences, a.Services.Data, a.Logger, a.Metrics)
	lookupHandler := http.NewLookupHandler(a.Services.Lookup, a.Logger, a.Metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		&cfg.HTTP,
		tokenService,
		a.Metrics,
		bikeHandler,
		serviceHandler,
		dataHandler,
		lookupHandler,
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}
	a.HTTPRouter = router

	return a, nil
}

func (a *App) openBackend(ctx context.Context) (ports.KVStorage, error) {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.SQLite = store
		return store, nil
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DB.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := postgres.Migrate(db, cfg.DB.MigrationsDir); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		a.DB = db
		return postgres.NewKVRepository(db), nil
	case config.DriverRedis:
		if a.RedisClient == nil {
			return nil, fmt.Errorf("redis is not connected")
		}
		return redis.NewRedisAdapter(a.RedisClient), nil
	default:
		return filestore.New(cfg.Storage.DataDir)
	}
}

// Runs all services
func (a *App) Run() error {
	listenAddr := a.Config.HTTP.Addr()
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr":     listenAddr,
		"degraded": a.Store.Degraded(),
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)
	a.Close()
	a.Logger.Info("Application stopped successfully", nil)
	return nil
}

// Close releases connections opened by NewCore.
func (a *App) Close() {
	// Close database
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Database close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Close SQLite
	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			a.Logger.Error("SQLite close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Close Redis
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Redis close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
