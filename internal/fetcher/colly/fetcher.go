// Package collyfetcher implements the resilient HTML fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/metrics"
	"github.com/atlaswire/newscrawler/internal/news"
)

// Config controls collector behavior.
type Config struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxBodyBytes   int
}

// Fetcher retrieves article pages with retry on transient failures and
// a rendering-proxy fallback for domains that block the direct path.
type Fetcher struct {
	cfg            Config
	retry          news.RetryPolicy
	renderer       news.Renderer
	challengeCheck func(host string) bool
	baseCollector  *colly.Collector
	logger         *zap.Logger
}

// New builds a Fetcher. renderer may be nil, in which case blocked
// domains fail with ErrBlocked. challengeCheck flags hosts known to
// serve an interactive bot challenge; nil pre-flags no host.
func New(cfg Config, retry news.RetryPolicy, renderer news.Renderer, challengeCheck func(host string) bool, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = "fr-FR,fr;q=0.9,ar;q=0.6,en;q=0.4"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if retry == nil {
		retry = NewLinearRetryPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()

	c := colly.NewCollector(colly.Async(false), colly.UserAgent(cfg.UserAgent))
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.SetRequestTimeout(cfg.Timeout)
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:            cfg,
		retry:          retry,
		renderer:       renderer,
		challengeCheck: challengeCheck,
		baseCollector:  c,
		logger:         logger,
	}
}

// Fetch executes a single GET with retries. Failures are reported
// inside the FetchResult so callers can skip the URL without treating
// it as a batch-level error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) news.FetchResult {
	if f.challengeCheck != nil && f.challengeCheck(hostOf(rawURL)) {
		return f.fetchViaProxy(ctx, rawURL)
	}

	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 1; ; attempt++ {
		status, body, err := f.doFetch(ctx, rawURL)
		lastStatus, lastErr = status, err

		if err == nil && status == http.StatusOK {
			if IsChallengePage(body) {
				f.logger.Info("bot challenge detected", zap.String("url", rawURL))
				return f.fetchViaProxy(ctx, rawURL)
			}
			return news.FetchResult{URL: rawURL, HTML: body, StatusCode: status}
		}
		if status == http.StatusForbidden {
			return f.fetchViaProxy(ctx, rawURL)
		}
		if !f.retry.ShouldRetry(status, err, attempt) {
			break
		}
		f.logger.Debug("retrying fetch",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.Error(err),
		)
		if err := sleepWithContext(ctx, f.retry.Backoff(attempt)); err != nil {
			return news.FetchResult{URL: rawURL, StatusCode: lastStatus, Err: err}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fetch %s: unexpected status %d", rawURL, lastStatus)
	}
	return news.FetchResult{URL: rawURL, StatusCode: lastStatus, Err: lastErr}
}

func (f *Fetcher) doFetch(ctx context.Context, rawURL string) (int, string, error) {
	collector := f.baseCollector.Clone()

	var (
		status   int
		body     string
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		raw := r.Body
		if f.cfg.MaxBodyBytes > 0 && len(raw) > f.cfg.MaxBodyBytes {
			raw = raw[:f.cfg.MaxBodyBytes]
		}
		body = string(raw)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return status, "", fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && fetchErr == nil {
			fetchErr = err
		}
	}
	return status, body, fetchErr
}

// fetchViaProxy is the last-resort path for blocked domains. The
// renderer returns a markdown-like view of the page, which is also
// re-synthesized into minimal HTML for the DOM-based extractors.
func (f *Fetcher) fetchViaProxy(ctx context.Context, rawURL string) news.FetchResult {
	if f.renderer == nil {
		return news.FetchResult{URL: rawURL, StatusCode: http.StatusForbidden, Err: news.ErrBlocked}
	}
	metrics.ObserveProxyFallback(rawURL)
	markdown, err := f.renderer.Render(ctx, rawURL)
	if err != nil || markdown == "" {
		if err == nil {
			err = news.ErrBlocked
		}
		f.logger.Warn("rendering proxy failed", zap.String("url", rawURL), zap.Error(err))
		return news.FetchResult{URL: rawURL, StatusCode: http.StatusForbidden, Err: errors.Join(news.ErrBlocked, err)}
	}
	return news.FetchResult{
		URL:        rawURL,
		HTML:       MarkdownToHTML(markdown),
		Markdown:   markdown,
		StatusCode: http.StatusOK,
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
		return fmt.Errorf("retry backoff: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
