// Package memory provides an in-memory article store for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/atlaswire/newscrawler/internal/news"
)

// ArticleStore keeps articles in a map keyed by SourceURL.
type ArticleStore struct {
	mu       sync.Mutex
	articles map[string]news.Article
}

// NewArticleStore returns an empty store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{articles: make(map[string]news.Article)}
}

// Upsert inserts or replaces rows by SourceURL.
func (s *ArticleStore) Upsert(_ context.Context, articles []news.Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range articles {
		if a.SourceURL == "" {
			return 0, fmt.Errorf("article %q has no source url", a.Title)
		}
		s.articles[a.SourceURL] = a
	}
	return len(articles), nil
}

// Insert adds rows, failing on a SourceURL that already exists.
func (s *ArticleStore) Insert(_ context.Context, articles []news.Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	written := 0
	for _, a := range articles {
		if a.SourceURL == "" {
			return written, fmt.Errorf("article %q has no source url", a.Title)
		}
		if _, exists := s.articles[a.SourceURL]; exists {
			return written, fmt.Errorf("duplicate source url %s", a.SourceURL)
		}
		s.articles[a.SourceURL] = a
		written++
	}
	return written, nil
}

// DeleteByURLs removes the rows for the given source URLs.
func (s *ArticleStore) DeleteByURLs(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		delete(s.articles, u)
	}
	return nil
}

// Get returns the stored article for a source URL.
func (s *ArticleStore) Get(url string) (news.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[url]
	return a, ok
}

// All returns every stored article sorted by SourceURL.
func (s *ArticleStore) All() []news.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]news.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceURL < out[j].SourceURL })
	return out
}

// Len reports the number of stored articles.
func (s *ArticleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}
