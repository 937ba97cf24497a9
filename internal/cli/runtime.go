package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wellness-quiz/internal/app"
	"wellness-quiz/internal/catalog"
	"wellness-quiz/internal/config"
	"wellness-quiz/internal/infra/memory"
	"wellness-quiz/internal/infra/postgres"
	redisstore "wellness-quiz/internal/infra/redis"
	"wellness-quiz/internal/infra/sqlite"
	"wellness-quiz/internal/logging"
	"wellness-quiz/internal/metrics"
)

// runtime is everything a command needs, built from config.
type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	service *app.QuizService
	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	_ = rt.logger.Sync()
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	if opts.storage != "" {
		cfg.Storage.Driver = opts.storage
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openRuntime wires storage, catalog and service, then resumes the saved session.
func openRuntime(ctx context.Context, opts *rootOptions) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}

	var pool *pgxpool.Pool
	if cfg.Storage.Driver == config.DriverPostgres || cfg.Catalog.Source == config.CatalogPostgres {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
	}

	storage, err := rt.openStorage(ctx, pool)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var loader catalog.Loader
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		loader = catalog.NewFileLoader(cfg.Catalog.Path)
	case config.CatalogPostgres:
		loader = postgres.NewCatalogLoader(pool, cfg.Catalog.ID)
	default:
		loader = catalog.NewStaticLoader(catalog.Default())
	}
	c, err := loader.LoadCatalog(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if err := metrics.CheckCatalog(c); err != nil {
		rt.Close()
		return nil, err
	}

	rt.service = app.NewQuizService(c, storage, logger)
	if err := rt.service.Resume(ctx); err != nil {
		logger.Warn("saved session unreadable, starting fresh", zap.Error(err))
	}
	logger.Debug("runtime ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("catalog", cfg.Catalog.Source),
		zap.Int("questions", c.Len()))
	return rt, nil
}

func (rt *runtime) openStorage(ctx context.Context, pool *pgxpool.Pool) (app.Storage, error) {
	cfg := rt.cfg
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return memory.NewStorage(), nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewStorage(client, cfg.Redis.Prefix, config.TTLDuration(cfg.Redis.TTL, 0)), nil
	case config.DriverPostgres:
		return postgres.NewStorage(pool), nil
	default:
		path := cfg.Storage.Path
		if path == "" {
			p, err := sqlite.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		return store, nil
	}
}
