// Package orchestrator runs crawl batches: site fan-out, per-URL
// pacing, dedupe, persistence and the batch-completion event.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/archive"
	"github.com/atlaswire/newscrawler/internal/clock/system"
	"github.com/atlaswire/newscrawler/internal/discovery"
	"github.com/atlaswire/newscrawler/internal/id/uuid"
	"github.com/atlaswire/newscrawler/internal/logging"
	"github.com/atlaswire/newscrawler/internal/metrics"
	"github.com/atlaswire/newscrawler/internal/news"
	"github.com/atlaswire/newscrawler/internal/registry"
)

// ArticleBuilder turns one fetched page into a persisted-shape article.
type ArticleBuilder interface {
	BuildArticle(ctx context.Context, fetched news.FetchResult, target news.SiteTarget) (news.Article, string, error)
}

// Config controls batch execution.
type Config struct {
	Workers           int
	PerURLDelay       time.Duration
	DefaultMaxPerSite int
	EventTopic        string
}

// Deps are the collaborators a batch needs. Archive and Publisher are
// optional; Clock and IDs default to the real implementations.
type Deps struct {
	Registry  *registry.Registry
	Fetcher   news.Fetcher
	Builder   ArticleBuilder
	Store     news.ArticleStore
	Archive   news.Archive
	Publisher news.Publisher
	Clock     news.Clock
	IDs       news.IDGenerator
	Logger    *zap.Logger
}

// Orchestrator coordinates one crawl or rescrape batch at a time.
type Orchestrator struct {
	cfg  Config
	deps Deps
}

// New validates dependencies and applies defaults.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if deps.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if deps.Builder == nil {
		return nil, fmt.Errorf("article builder is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("article store is required")
	}
	if deps.Clock == nil {
		deps.Clock = system.New()
	}
	if deps.IDs == nil {
		deps.IDs = uuid.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PerURLDelay == 0 {
		cfg.PerURLDelay = 700 * time.Millisecond
	}
	if cfg.DefaultMaxPerSite <= 0 {
		cfg.DefaultMaxPerSite = 6
	}
	if cfg.EventTopic == "" {
		cfg.EventTopic = "crawl-batches"
	}
	metrics.Init()
	return &Orchestrator{cfg: cfg, deps: deps}, nil
}

// Run executes one batch. Per-site and per-URL failures are absorbed
// into the report; only persistence failures surface as an error.
func (o *Orchestrator) Run(ctx context.Context, params news.RunParams) (news.BatchReport, error) {
	runID, err := o.deps.IDs.NewID()
	if err != nil {
		return news.BatchReport{}, fmt.Errorf("generate run id: %w", err)
	}
	report := news.BatchReport{RunID: runID, StartedAt: o.deps.Clock.Now()}
	log := logging.ForRun(o.deps.Logger, runID)

	if len(params.RescrapeURLs) > 0 {
		err = o.rescrape(ctx, log, params, &report)
	} else {
		err = o.crawl(ctx, log, params, &report)
	}
	report.FinishedAt = o.deps.Clock.Now()
	report.Success = err == nil

	mode := "crawl"
	if len(params.RescrapeURLs) > 0 {
		mode = "rescrape"
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.ObserveRun(mode, status)
	if err != nil {
		return report, err
	}

	o.publishEvent(ctx, log, report)
	return report, nil
}

func (o *Orchestrator) crawl(ctx context.Context, log *zap.Logger, params news.RunParams, report *news.BatchReport) error {
	targets := o.deps.Registry.Select(params.Sites)
	report.TotalTargets = len(targets)

	window := targets
	if params.Offset > 0 {
		if params.Offset >= len(targets) {
			window = nil
		} else {
			window = targets[params.Offset:]
		}
	}
	if params.LimitSites > 0 && len(window) > params.LimitSites {
		window = window[:params.LimitSites]
		next := params.Offset + params.LimitSites
		report.NextOffset = &next
	}

	results := make([][]news.Article, len(window))
	siteErrs := make([]error, len(window))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], siteErrs[i] = o.crawlSite(ctx, log, window[i], params)
			}
		}()
	}
	for i := range window {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var collected []news.Article
	for i, target := range window {
		report.SitesProcessed = append(report.SitesProcessed, target.Source)
		if siteErrs[i] != nil {
			report.PerSiteErrors = append(report.PerSiteErrors, news.SiteError{
				Source: target.Source,
				Error:  siteErrs[i].Error(),
			})
			continue
		}
		collected = append(collected, results[i]...)
	}

	deduped := dedupeBySourceURL(collected)
	// On persistence failure the report keeps the count that was about
	// to be written.
	report.ArticlesInserted = len(deduped)
	inserted, err := o.deps.Store.Upsert(ctx, deduped)
	if err != nil {
		return fmt.Errorf("persist batch: %w", err)
	}
	report.ArticlesInserted = inserted
	metrics.AddArticlesWritten(inserted)
	return nil
}

func (o *Orchestrator) crawlSite(ctx context.Context, log *zap.Logger, target news.SiteTarget, params news.RunParams) ([]news.Article, error) {
	start := o.deps.Clock.Now()
	defer func() {
		metrics.ObserveSiteCrawl(target.Domain, o.deps.Clock.Now().Sub(start))
	}()

	listing := o.deps.Fetcher.Fetch(ctx, target.ListingURL)
	if listing.Err != nil {
		metrics.ObserveFetch(target.ListingURL, "error")
		return nil, fmt.Errorf("fetch listing %s: %w", target.ListingURL, listing.Err)
	}

	links := discovery.Links(listing.HTML, target.ListingURL, target)
	if params.PathContains != "" {
		filtered := links[:0]
		for _, l := range links {
			if strings.Contains(l, params.PathContains) {
				filtered = append(filtered, l)
			}
		}
		links = filtered
	}
	maxPerSite := params.MaxPerSite
	if maxPerSite <= 0 {
		maxPerSite = o.cfg.DefaultMaxPerSite
	}
	if len(links) > maxPerSite {
		links = links[:maxPerSite]
	}

	// The delay also separates the listing fetch from the first
	// article fetch, keeping a fixed pause after the discovery pass.
	var articles []news.Article
	for _, link := range links {
		if err := sleepWithContext(ctx, o.cfg.PerURLDelay); err != nil {
			return articles, err
		}
		article, ok := o.processURL(ctx, log, link, target)
		if ok {
			articles = append(articles, article)
		}
	}
	return articles, nil
}

// processURL fetches, archives and extracts one article page. Any
// failure is logged and counted but never stops the site.
func (o *Orchestrator) processURL(ctx context.Context, log *zap.Logger, link string, target news.SiteTarget) (news.Article, bool) {
	fetched := o.deps.Fetcher.Fetch(ctx, link)
	if fetched.Err != nil {
		metrics.ObserveFetch(link, "error")
		log.Warn("fetch failed",
			zap.String("url", link),
			zap.Int("status", fetched.StatusCode),
			zap.Error(fetched.Err),
		)
		return news.Article{}, false
	}
	metrics.ObserveFetch(link, "ok")
	o.archivePage(ctx, log, target, fetched)

	article, layer, err := o.deps.Builder.BuildArticle(ctx, fetched, target)
	if err != nil {
		metrics.ObserveExtractionFailure(link, failureReason(err))
		log.Info("page skipped",
			zap.String("url", link),
			zap.String("reason", failureReason(err)),
		)
		return news.Article{}, false
	}
	metrics.ObserveExtraction(link, layer)
	return article, true
}

func (o *Orchestrator) rescrape(ctx context.Context, log *zap.Logger, params news.RunParams, report *news.BatchReport) error {
	var (
		canonical []string
		fresh     []news.Article
		sites     = map[string]bool{}
	)
	for i, raw := range params.RescrapeURLs {
		u, err := news.CanonicalURL(raw)
		if err != nil {
			report.PerSiteErrors = append(report.PerSiteErrors, news.SiteError{
				Source: raw,
				Error:  fmt.Sprintf("invalid url: %v", err),
			})
			continue
		}
		canonical = append(canonical, u)

		target, ok := o.deps.Registry.OwnerOf(u)
		if !ok {
			report.PerSiteErrors = append(report.PerSiteErrors, news.SiteError{
				Source: raw,
				Error:  "no registered site owns this url",
			})
			continue
		}
		if !sites[target.Source] {
			sites[target.Source] = true
			report.SitesProcessed = append(report.SitesProcessed, target.Source)
		}

		if i > 0 {
			if err := sleepWithContext(ctx, o.cfg.PerURLDelay); err != nil {
				return err
			}
		}
		if article, ok := o.processURL(ctx, log, u, target); ok {
			fresh = append(fresh, article)
		}
	}
	report.TotalTargets = len(sites)

	deduped := dedupeBySourceURL(fresh)
	report.ArticlesInserted = len(deduped)

	// Old rows for every requested URL go away even when the refetch
	// failed: a stale extraction is worse than an absent row.
	if err := o.deps.Store.DeleteByURLs(ctx, canonical); err != nil {
		return fmt.Errorf("delete rescraped rows: %w", err)
	}
	inserted, err := o.deps.Store.Insert(ctx, deduped)
	if err != nil {
		return fmt.Errorf("insert rescraped rows: %w", err)
	}
	report.ArticlesInserted = inserted
	metrics.AddArticlesWritten(inserted)
	return nil
}

func (o *Orchestrator) archivePage(ctx context.Context, log *zap.Logger, target news.SiteTarget, fetched news.FetchResult) {
	if o.deps.Archive == nil || fetched.HTML == "" {
		return
	}
	path := archive.ObjectPath(target.Source, fetched.URL, o.deps.Clock.Now())
	if _, err := o.deps.Archive.Put(ctx, path, []byte(fetched.HTML)); err != nil {
		log.Warn("archive write failed", zap.String("url", fetched.URL), zap.Error(err))
	}
}

func (o *Orchestrator) publishEvent(ctx context.Context, log *zap.Logger, report news.BatchReport) {
	if o.deps.Publisher == nil {
		return
	}
	event := news.BatchEvent{
		RunID:            report.RunID,
		ArticlesInserted: report.ArticlesInserted,
		Sites:            report.SitesProcessed,
		ErrorCount:       len(report.PerSiteErrors),
		FinishedAt:       report.FinishedAt,
	}
	if _, err := o.deps.Publisher.Publish(ctx, o.cfg.EventTopic, event); err != nil {
		log.Warn("batch event publish failed", zap.Error(err))
	}
}

// dedupeBySourceURL keeps the last occurrence of each SourceURL,
// preserving the position of the first.
func dedupeBySourceURL(articles []news.Article) []news.Article {
	seen := make(map[string]int, len(articles))
	var out []news.Article
	for _, a := range articles {
		if idx, ok := seen[a.SourceURL]; ok {
			out[idx] = a
			continue
		}
		seen[a.SourceURL] = len(out)
		out = append(out, a)
	}
	return out
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, news.ErrVideoPage):
		return "video"
	case errors.Is(err, news.ErrNoContent):
		return "no_content"
	case errors.Is(err, news.ErrTitleNotFound):
		return "title_not_found"
	case errors.Is(err, news.ErrBlocked):
		return "blocked"
	default:
		return "error"
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
