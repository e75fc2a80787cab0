package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/news"
	"github.com/atlaswire/newscrawler/internal/registry"
)

type stubRunner struct {
	lastParams news.RunParams
	report     news.BatchReport
	err        error
}

func (s *stubRunner) Run(_ context.Context, params news.RunParams) (news.BatchReport, error) {
	s.lastParams = params
	return s.report, s.err
}

func newTestServer(runner *stubRunner) *Server {
	reg := registry.NewWithTargets([]news.SiteTarget{
		{ListingURL: "https://a.ma/bourse", Source: "SiteA", Category: "Bourse", Domain: "a.ma"},
	})
	return NewServer(runner, reg, nil)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(&stubRunner{})

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(s, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&stubRunner{})
	rec := doRequest(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListSites(t *testing.T) {
	s := newTestServer(&stubRunner{})
	rec := doRequest(s, http.MethodGet, "/v1/sites", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Sites []siteSummary `json:"sites"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Sites, 1)
	require.Equal(t, "SiteA", payload.Sites[0].Source)
}

func TestTriggerCrawl(t *testing.T) {
	runner := &stubRunner{report: news.BatchReport{
		RunID:            "run-42",
		Success:          true,
		ArticlesInserted: 3,
		FinishedAt:       time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}}
	s := newTestServer(runner)

	rec := doRequest(s, http.MethodPost, "/v1/crawl", `{"max_per_site":5,"sites":["SiteA"],"rescrape_urls":["https://x.ma/ignored"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"run_id":"run-42"`)
	require.Contains(t, rec.Body.String(), `"success":true`)
	require.Equal(t, 5, runner.lastParams.MaxPerSite)
	require.Equal(t, []string{"SiteA"}, runner.lastParams.Sites)
	require.Empty(t, runner.lastParams.RescrapeURLs, "crawl endpoint must not rescrape")
}

func TestTriggerCrawlEmptyBody(t *testing.T) {
	runner := &stubRunner{report: news.BatchReport{RunID: "run-1"}}
	s := newTestServer(runner)

	rec := doRequest(s, http.MethodPost, "/v1/crawl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, runner.lastParams.MaxPerSite)
}

func TestTriggerCrawlBadJSON(t *testing.T) {
	s := newTestServer(&stubRunner{})
	rec := doRequest(s, http.MethodPost, "/v1/crawl", `{"max_per_site":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerCrawlRunnerFailure(t *testing.T) {
	runner := &stubRunner{
		report: news.BatchReport{
			RunID:            "run-9",
			ArticlesInserted: 4,
			PerSiteErrors:    []news.SiteError{{Source: "SiteA", Error: "listing timeout"}},
		},
		err: errors.New("persist batch: connection refused"),
	}
	s := newTestServer(runner)
	rec := doRequest(s, http.MethodPost, "/v1/crawl", `{}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := rec.Body.String()
	require.Contains(t, body, "connection refused")
	require.Contains(t, body, `"success":false`)
	require.Contains(t, body, `"articles_count":4`, "partial report keeps the pending count")
	require.Contains(t, body, "listing timeout", "partial report keeps per-site errors")
}

func TestTriggerRescrape(t *testing.T) {
	runner := &stubRunner{report: news.BatchReport{RunID: "run-7"}}
	s := newTestServer(runner)

	rec := doRequest(s, http.MethodPost, "/v1/rescrape", `{"rescrape_urls":["https://a.ma/article/un"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"https://a.ma/article/un"}, runner.lastParams.RescrapeURLs)

	rec = doRequest(s, http.MethodPost, "/v1/rescrape", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
