// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal          *prometheus.CounterVec
	articlesExtractedTotal     *prometheus.CounterVec
	extractionFailuresTotal    *prometheus.CounterVec
	proxyFallbacksTotal        *prometheus.CounterVec
	crawlRunsTotal             *prometheus.CounterVec
	articlesWrittenTotal       prometheus.Counter
	siteCrawlDurationSeconds   *prometheus.HistogramVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newscrawler_pages_fetched_total",
				Help: "Pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		articlesExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newscrawler_articles_extracted_total",
				Help: "Articles that passed extraction, labeled by site and winning layer.",
			},
			[]string{"site", "layer"},
		)

		extractionFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newscrawler_extraction_failures_total",
				Help: "Pages every extraction layer rejected, labeled by site and reason.",
			},
			[]string{"site", "reason"},
		)

		proxyFallbacksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newscrawler_proxy_fallbacks_total",
				Help: "Fetches routed through the rendering proxy, labeled by site.",
			},
			[]string{"site"},
		)

		crawlRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newscrawler_runs_total",
				Help: "Orchestrator runs, labeled by mode and status.",
			},
			[]string{"mode", "status"},
		)

		articlesWrittenTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newscrawler_articles_written_total",
				Help: "Articles committed to the store.",
			},
		)

		siteCrawlDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newscrawler_site_crawl_duration_seconds",
				Help:    "Wall time spent crawling one site.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"site"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newscrawler_http_request_duration_seconds",
				Help:    "Latency of the trigger API, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname label from a URL or host,
// returning "unknown" when it cannot.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the collectors.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch counts one fetch attempt outcome ("ok", "skip", "error").
func ObserveFetch(site, outcome string) {
	pagesFetchedTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveExtraction counts one successful extraction by winning layer.
func ObserveExtraction(site, layer string) {
	articlesExtractedTotal.WithLabelValues(SanitizeSite(site), layer).Inc()
}

// ObserveExtractionFailure counts a page every layer rejected.
func ObserveExtractionFailure(site, reason string) {
	extractionFailuresTotal.WithLabelValues(SanitizeSite(site), reason).Inc()
}

// ObserveProxyFallback counts a fetch routed through the rendering proxy.
func ObserveProxyFallback(site string) {
	proxyFallbacksTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// ObserveRun counts a finished orchestrator run.
func ObserveRun(mode, status string) {
	crawlRunsTotal.WithLabelValues(mode, status).Inc()
}

// AddArticlesWritten adds committed article rows.
func AddArticlesWritten(n int) {
	if n > 0 {
		articlesWrittenTotal.Add(float64(n))
	}
}

// ObserveSiteCrawl records the wall time of one site's crawl.
func ObserveSiteCrawl(site string, duration time.Duration) {
	siteCrawlDurationSeconds.WithLabelValues(SanitizeSite(site)).Observe(duration.Seconds())
}

// ObserveHTTPRequest records trigger-API latency.
func ObserveHTTPRequest(method, route string, duration time.Duration) {
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
