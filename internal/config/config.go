// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/atlaswire/newscrawler/internal/news"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Proxy      ProxyConfig      `mapstructure:"proxy"`
	AI         AIConfig         `mapstructure:"ai"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	DB         DBConfig         `mapstructure:"db"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	PubSub     PubSubConfig     `mapstructure:"pubsub"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls the trigger API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// CrawlerConfig governs batch execution.
type CrawlerConfig struct {
	Workers        int    `mapstructure:"workers"`
	MaxPerSite     int    `mapstructure:"max_per_site"`
	DelayMs        int    `mapstructure:"delay_ms"`
	UserAgent      string `mapstructure:"user_agent"`
	AcceptLanguage string `mapstructure:"accept_language"`
}

// HTTPConfig configures fetch timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	MaxRetries     int `mapstructure:"max_retries"`
	RetryDelayMs   int `mapstructure:"retry_delay_ms"`
}

// ProxyConfig points at the external rendering proxy. An empty base URL
// disables the anti-bot fallback path.
type ProxyConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AIConfig configures the hosted model behind the AI-assisted layer.
// An empty API key disables the layer.
type AIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ExtractionConfig carries the per-layer minimum content lengths.
type ExtractionConfig struct {
	MinAI         int `mapstructure:"min_ai"`
	MinMarkdown   int `mapstructure:"min_markdown"`
	MinReader     int `mapstructure:"min_reader"`
	MinScrape     int `mapstructure:"min_scrape"`
	MinSectionDiv int `mapstructure:"min_section_div"`
}

// DBConfig controls access to Postgres.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ArchiveConfig sets the raw-HTML snapshot destination. An empty bucket
// disables archiving.
type ArchiveConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
}

// PubSubConfig holds batch-event publishing metadata. An empty project
// disables publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.workers", 2)
	v.SetDefault("crawler.max_per_site", 6)
	v.SetDefault("crawler.delay_ms", 700)
	v.SetDefault("crawler.accept_language", "fr-FR,fr;q=0.9,ar;q=0.6,en;q=0.4")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_delay_ms", 600)
	v.SetDefault("proxy.timeout_seconds", 45)
	v.SetDefault("ai.model", "command-r-08-2024")
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("extraction.min_ai", 300)
	v.SetDefault("extraction.min_markdown", 400)
	v.SetDefault("extraction.min_reader", 450)
	v.SetDefault("extraction.min_scrape", 350)
	v.SetDefault("extraction.min_section_div", 300)
	v.SetDefault("db.table", "articles")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("pubsub.topic", "crawl-batches")
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries <= 0 {
		return fmt.Errorf("http.max_retries must be > 0")
	}
	return nil
}

// ValidateForCrawl adds the requirements only crawl runs have.
func (c Config) ValidateForCrawl() error {
	if c.DB.DSN == "" {
		return news.ErrMissingDSN
	}
	return nil
}

// FetchTimeout returns the per-request fetch budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base retry backoff.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.HTTP.RetryDelayMs) * time.Millisecond
}

// AITimeout returns the per-call budget for the hosted model.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// PerURLDelay returns the pause between article fetches on one site.
func (c Config) PerURLDelay() time.Duration {
	return time.Duration(c.Crawler.DelayMs) * time.Millisecond
}
