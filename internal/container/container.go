package container

import (
	"context"
	"fmt"
	"time"

	"puma/crawler/internal/client"
	"puma/crawler/internal/config"
	"puma/crawler/internal/crawler"
	"puma/crawler/internal/normalizer"
	"puma/crawler/internal/proxy"
	"puma/crawler/internal/queue"
	"puma/crawler/internal/sink"
	"puma/crawler/internal/state"
	"puma/crawler/internal/walker"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config     *config.Config
	Client     client.Client
	Queue      queue.Queue
	SeenIDs    state.SeenSet
	Walker     *walker.Walker
	Normalizer *normalizer.Normalizer
	Sink       *sink.JSONLines
	Engine     *crawler.Engine

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
	}

	if cfg.Crawler.Queue == config.BackendRedis || cfg.Crawler.Dedup == config.BackendRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")
		c.redis = rdb
	}

	var fingerprints state.SeenSet
	switch cfg.Crawler.Dedup {
	case config.BackendRedis:
		c.SeenIDs = state.NewRedisSeenSet(c.redis, cfg.Redis.KeyPrefix, "products")
		fingerprints = state.NewRedisSeenSet(c.redis, cfg.Redis.KeyPrefix, "requests")
	default:
		c.SeenIDs = state.NewMemorySeenSet()
		fingerprints = state.NewMemorySeenSet()
	}
	if !cfg.Crawler.FilterDuplicates {
		fingerprints = nil
	}

	switch cfg.Crawler.Queue {
	case config.BackendRedis:
		redisQueue, err := queue.NewRedisQueue(ctx, c.redis, cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.Queue = redisQueue
	default:
		c.Queue = queue.NewMemoryQueue(200 * time.Millisecond)
	}

	proxySupplier := proxy.NewSupplier(ctx, cfg.Client.Proxies, proxy.HTTPValidator(cfg.Site.SeedURL, cfg.Client.UserAgent))
	c.Client = client.NewClient(cfg.Client, proxySupplier)

	out, err := sink.Open(cfg.Crawler.Output)
	if err != nil {
		return nil, err
	}
	c.Sink = out

	c.Walker = walker.New(cfg.Site)
	c.Normalizer = normalizer.New(c.SeenIDs, cfg.Site.Brand, cfg.Site.Currency)
	c.Engine = crawler.NewEngine(
		c.Queue,
		c.Client,
		c.Walker,
		c.Normalizer,
		c.Sink,
		fingerprints,
		cfg.Crawler.Workers,
	)

	return c, nil
}

// Run executes a full crawl
func (c *Container) Run(ctx context.Context) error {
	return c.Engine.Run(ctx)
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	var err error
	if c.Sink != nil {
		err = c.Sink.Close()
	}
	if c.redis != nil {
		if closeErr := c.redis.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}

	log.Info("Container shut down successfully")
	return err
}
