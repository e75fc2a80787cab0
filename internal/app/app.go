// Package app initializes and holds the long-lived services behind the
// crawl commands.
package app

import (
	"context"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub"
	gcsstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/archive"
	"github.com/atlaswire/newscrawler/internal/config"
	"github.com/atlaswire/newscrawler/internal/extractor"
	collyfetcher "github.com/atlaswire/newscrawler/internal/fetcher/colly"
	"github.com/atlaswire/newscrawler/internal/fetcher/proxy"
	"github.com/atlaswire/newscrawler/internal/logging"
	"github.com/atlaswire/newscrawler/internal/news"
	"github.com/atlaswire/newscrawler/internal/orchestrator"
	pubsubpub "github.com/atlaswire/newscrawler/internal/publisher/pubsub"
	"github.com/atlaswire/newscrawler/internal/registry"
	storemem "github.com/atlaswire/newscrawler/internal/store/memory"
	storepg "github.com/atlaswire/newscrawler/internal/store/postgres"
)

// App holds the shared services for one process: logger, registry,
// orchestrator and the closable clients behind them.
type App struct {
	Config       config.Config
	Logger       *zap.Logger
	Registry     *registry.Registry
	Orchestrator *orchestrator.Orchestrator

	pgStore      *storepg.ArticleStore
	gcsClient    *gcsstorage.Client
	pubsubClient *gcppubsub.Client
	publisher    *pubsubpub.Publisher
}

// New wires every service from config. It fails fast on anything a
// batch cannot run without.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry.New(),
	}

	var renderer news.Renderer
	if cfg.Proxy.BaseURL != "" {
		r, err := proxy.New(proxy.Config{
			BaseURL: cfg.Proxy.BaseURL,
			APIKey:  cfg.Proxy.APIKey,
			Timeout: cfg.FetchTimeout() * 3,
		})
		if err != nil {
			return nil, fmt.Errorf("init rendering proxy: %w", err)
		}
		renderer = r
	} else {
		logger.Warn("rendering proxy not configured, bot-challenged domains will be skipped")
	}

	retry := collyfetcher.NewLinearRetryPolicyWith(cfg.HTTP.MaxRetries, cfg.RetryDelay())
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:      cfg.Crawler.UserAgent,
		AcceptLanguage: cfg.Crawler.AcceptLanguage,
		Timeout:        cfg.FetchTimeout(),
	}, retry, renderer, registry.IsChallengeDomain, logger)

	var recon news.ContentReconstructor
	if cfg.AI.APIKey != "" {
		recon = extractor.NewCohereReconstructor(cfg.AI.APIKey, cfg.AI.Model, cfg.AITimeout())
	} else {
		logger.Info("no AI key configured, extraction starts at the markdown layer")
	}
	pipeline := extractor.NewPipeline(recon, extractor.Thresholds{
		AI:         cfg.Extraction.MinAI,
		Markdown:   cfg.Extraction.MinMarkdown,
		Reader:     cfg.Extraction.MinReader,
		Scrape:     cfg.Extraction.MinScrape,
		SectionDiv: cfg.Extraction.MinSectionDiv,
	}, nil, logger)

	var store news.ArticleStore
	if cfg.DB.DSN != "" {
		pg, err := storepg.New(ctx, storepg.Config{
			DSN:      cfg.DB.DSN,
			Table:    cfg.DB.Table,
			MaxConns: cfg.DB.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init article store: %w", err)
		}
		a.pgStore = pg
		store = pg
	} else {
		logger.Warn("no database DSN configured, articles stay in memory")
		store = storemem.NewArticleStore()
	}

	var arch news.Archive
	if cfg.Archive.GCSBucket != "" {
		client, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		a.gcsClient = client
		arch, err = archive.NewGCS(client, archive.GCSConfig{Bucket: cfg.Archive.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
	}

	var publisher news.Publisher
	if cfg.PubSub.ProjectID != "" {
		client, err := gcppubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		a.pubsubClient = client
		a.publisher = pubsubpub.New(client)
		publisher = a.publisher
	}

	orch, err := orchestrator.New(orchestrator.Config{
		Workers:           cfg.Crawler.Workers,
		PerURLDelay:       cfg.PerURLDelay(),
		DefaultMaxPerSite: cfg.Crawler.MaxPerSite,
		EventTopic:        cfg.PubSub.Topic,
	}, orchestrator.Deps{
		Registry:  a.Registry,
		Fetcher:   fetcher,
		Builder:   pipeline,
		Store:     store,
		Archive:   arch,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}
	a.Orchestrator = orch

	return a, nil
}

// Close shuts down every closable service.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.Logger.Warn("close pubsub client", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.Logger.Warn("close gcs client", zap.Error(err))
		}
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	_ = a.Logger.Sync()
}
