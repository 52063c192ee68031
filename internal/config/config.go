package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Client  ClientConfig  `mapstructure:"client"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// SiteConfig holds the retailer endpoints and the static API parameters
type SiteConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	SeedURL     string `mapstructure:"seed_url"`
	ListingPath string `mapstructure:"listing_path"`
	DetailPath  string `mapstructure:"detail_path"`
	StoreCode   string `mapstructure:"store_code"`
	ChannelCode int    `mapstructure:"channel_code"`
	PageSize    int    `mapstructure:"page_size"`
	Brand       string `mapstructure:"brand"`
	Currency    string `mapstructure:"currency"`
}

// ListingURL returns the paginated category listing endpoint
func (s SiteConfig) ListingURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.ListingPath
}

// DetailURL returns the per-product detail endpoint
func (s SiteConfig) DetailURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.DetailPath
}

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	Timeout         int      `mapstructure:"timeout"`
	MaxRetries      int      `mapstructure:"max_retries"`
	RetryWaitMs     int      `mapstructure:"retry_wait_ms"`
	UserAgent       string   `mapstructure:"user_agent"`
	DownloadDelayMs int      `mapstructure:"download_delay_ms"`
	Proxies         []string `mapstructure:"proxies"`
}

// CrawlerConfig holds the engine configuration
type CrawlerConfig struct {
	Workers          int    `mapstructure:"workers"`
	Queue            string `mapstructure:"queue"` // memory or redis
	Dedup            string `mapstructure:"dedup"` // memory or redis
	Output           string `mapstructure:"output"`
	FilterDuplicates bool   `mapstructure:"filter_duplicates"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Password      string `mapstructure:"password"`
	Database      int    `mapstructure:"database"`
	ConsumerGroup string `mapstructure:"consumer_group"`
	MinIdleTime   int    `mapstructure:"min_idle_time"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Load loads configuration from a YAML file with environment variable overrides.
// An empty path searches for config.yaml in the current directory; a missing
// file there is not an error and leaves the defaults in place.
func Load(path string) (*Config, error) {
	viper.Reset()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	for name, backend := range map[string]string{"crawler.queue": c.Crawler.Queue, "crawler.dedup": c.Crawler.Dedup} {
		if backend != BackendMemory && backend != BackendRedis {
			return fmt.Errorf("%s must be %q or %q, got %q", name, BackendMemory, BackendRedis, backend)
		}
	}
	if c.Site.PageSize <= 0 {
		return fmt.Errorf("site.page_size must be positive, got %d", c.Site.PageSize)
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be positive, got %d", c.Crawler.Workers)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("site.base_url", "https://cn.puma.com")
	viper.SetDefault("site.seed_url", "https://cn.puma.com/")
	viper.SetDefault("site.listing_path", "/pumacn/product/list/searchProductByCondition.do")
	viper.SetDefault("site.detail_path", "/pumacn/product/get/item/list/by/conditions.do")
	viper.SetDefault("site.store_code", "1811147124")
	viper.SetDefault("site.channel_code", 100)
	viper.SetDefault("site.page_size", 36)
	viper.SetDefault("site.brand", "PUMA")
	viper.SetDefault("site.currency", "CNY")

	viper.SetDefault("client.timeout", 30)
	viper.SetDefault("client.max_retries", 3)
	viper.SetDefault("client.retry_wait_ms", 2000)
	viper.SetDefault("client.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_0) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/88.0.4324.150 Safari/537.36")
	viper.SetDefault("client.download_delay_ms", 1000)
	viper.SetDefault("client.proxies", []string{})

	viper.SetDefault("crawler.workers", 4)
	viper.SetDefault("crawler.queue", BackendMemory)
	viper.SetDefault("crawler.dedup", BackendMemory)
	viper.SetDefault("crawler.output", "-")
	viper.SetDefault("crawler.filter_duplicates", true)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.consumer_group", "puma_crawler")
	viper.SetDefault("redis.min_idle_time", 120)
	viper.SetDefault("redis.key_prefix", "puma:")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}
