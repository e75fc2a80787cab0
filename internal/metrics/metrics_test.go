package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard https", "https://www.Boursenews.ma/article/x", "www.boursenews.ma"},
		{"no scheme", "medias24.com/path", "medias24.com"},
		{"just host", "leboursier.ma", "leboursier.ma"},
		{"host with port", "hespress.com:8080", "hespress.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	Init()
	Init()

	if pagesFetchedTotal == nil || articlesExtractedTotal == nil ||
		crawlRunsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	ObserveFetch("https://www.boursenews.ma/a", "ok")
	if val := testutil.ToFloat64(pagesFetchedTotal); val != 1 {
		t.Errorf("expected pagesFetchedTotal to be 1, got %f", val)
	}
}

func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://www.medias24.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SanitizeSite(orig) == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
