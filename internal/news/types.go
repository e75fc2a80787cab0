// Package news defines core types shared across the crawl pipeline subsystems.
package news

import (
	"regexp"
	"time"
)

// SiteTarget is the immutable configuration for one crawl target.
// Instances are built once at startup by the registry and never mutated.
type SiteTarget struct {
	ListingURL      string
	Source          string
	Category        string
	Domain          string
	IncludePatterns []*regexp.Regexp
	ExcludePatterns []*regexp.Regexp
}

// FetchResult is the outcome of fetching a single URL.
// HTML is empty when the fetch failed; callers treat that as "skip".
// Markdown carries the rendering-proxy output when the anti-bot
// fallback path produced the page.
type FetchResult struct {
	URL        string
	HTML       string
	Markdown   string
	StatusCode int
	Err        error
}

// ExtractionResult is the intermediate output of the layered content pipeline.
type ExtractionResult struct {
	Content string
	Summary string
	KeyData []string
	Layer   string
}

// Article is the persisted entity, keyed uniquely by SourceURL.
type Article struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content"`
	Source      string     `json:"source"`
	SourceURL   string     `json:"source_url"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags,omitempty"`
}

// RunParams are the per-run knobs accepted by the orchestrator.
type RunParams struct {
	MaxPerSite   int      `json:"max_per_site"`
	Sites        []string `json:"sites,omitempty"`
	Offset       int      `json:"offset"`
	LimitSites   int      `json:"limit_sites"`
	PathContains string   `json:"path_contains,omitempty"`
	RescrapeURLs []string `json:"rescrape_urls,omitempty"`
}

// SiteError pairs a site label with the error that stopped it.
type SiteError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// BatchReport summarizes one orchestrator run for the caller.
// Success is false only on a hard batch failure (persistence); per-site
// errors alone do not clear it, partial success is the normal case.
// On failure ArticlesInserted carries the count that was about to be
// written. NextOffset is set when the requested window did not cover
// the whole site list, so the trigger can paginate a full crawl.
type BatchReport struct {
	RunID            string      `json:"run_id"`
	Success          bool        `json:"success"`
	ArticlesInserted int         `json:"articles_count"`
	PerSiteErrors    []SiteError `json:"errors,omitempty"`
	SitesProcessed   []string    `json:"processed"`
	TotalTargets     int         `json:"total_targets"`
	NextOffset       *int        `json:"next_offset,omitempty"`
	StartedAt        time.Time   `json:"started_at"`
	FinishedAt       time.Time   `json:"finished_at"`
}

// BatchEvent is the payload published after a successful persistence commit.
type BatchEvent struct {
	RunID            string    `json:"run_id"`
	ArticlesInserted int       `json:"articles_inserted"`
	Sites            []string  `json:"sites"`
	ErrorCount       int       `json:"error_count"`
	FinishedAt       time.Time `json:"finished_at"`
}
