package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"sheetpos/pos/internal/cart"
	"sheetpos/pos/internal/catalog"
	"sheetpos/pos/internal/client"
	"sheetpos/pos/internal/config"
	"sheetpos/pos/internal/metrics"
	"sheetpos/pos/internal/proxy"
	"sheetpos/pos/internal/receipt"
	"sheetpos/pos/internal/scheduler"
	"sheetpos/pos/internal/server"
	"sheetpos/pos/internal/service"
	"sheetpos/pos/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Client    client.CatalogClient
	Sources   state.SourceStore
	Catalog   *catalog.Store
	Cart      *cart.Cart
	Service   *service.Service
	Server    *server.Server
	Scheduler *scheduler.Scheduler
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(),
		Catalog: catalog.NewStore(),
	}

	proxySupplier := proxy.NewSupplier(context.Background(), cfg.Fetch.Proxies, cfg.Fetch.ProxyTestURL)
	container.Client = client.NewCatalogClient(cfg.Fetch, proxySupplier, container.Metrics)

	sources, err := newSourceStore(cfg)
	if err != nil {
		return nil, err
	}
	container.Sources = sources

	builder, err := receipt.NewBuilder(cfg.Receipt.NodeID, cfg.Cart.Currency, cfg.Receipt.DefaultLanguage)
	if err != nil {
		sources.Close()
		return nil, err
	}
	container.Cart = cart.New(container.Catalog, builder, cfg.Cart.TaxRate)

	container.Service = service.NewService(
		container.Client,
		catalog.NewNormalizer(cfg.Cart.Currency),
		container.Catalog,
		container.Cart,
		sources,
		receipt.NewHTMLRenderer(cfg.Receipt.ShopName),
		container.Metrics,
		cfg.Catalog,
		cfg.Store.Key,
	)

	container.Server = server.New(cfg.Server, container.Service, container.Metrics)

	if cfg.Catalog.RefreshSchedule != "" {
		sched, err := scheduler.New(cfg.Catalog.RefreshSchedule, func(ctx context.Context) error {
			_, err := container.Service.Reload(ctx)
			return err
		})
		if err != nil {
			sources.Close()
			return nil, err
		}
		container.Scheduler = sched
	}

	return container, nil
}

func newSourceStore(cfg *config.Config) (state.SourceStore, error) {
	if cfg.Store.Backend != "redis" {
		store, err := state.NewBoltSourceStore(cfg.Store.BoltPath)
		if err != nil {
			return nil, err
		}
		log.Infof("✅ Using catalog source store at %s", cfg.Store.BoltPath)
		return store, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	// Test connection
	_, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")
	return state.NewRedisSourceStore(rdb, cfg.Redis.KeyPrefix), nil
}

// Run serves the API, loads the remembered catalog and runs scheduled refreshes
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	if c.Config.Catalog.LoadOnStart {
		g.Go(func() error {
			if _, err := c.Service.LoadOnStartup(ctx); err != nil {
				// the operator can still upload a file or load another URL
				log.Warnf("⚠️ Initial catalog load failed: %v", err)
			}
			return nil
		})
	}

	if c.Scheduler != nil {
		g.Go(func() error {
			return c.Scheduler.Run(ctx)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Sources.Close(); err != nil {
		return fmt.Errorf("failed to close source store: %w", err)
	}

	log.Info("Container shut down successfully")
	return nil
}
