// Package postgres provides the Postgres-backed article store.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlaswire/newscrawler/internal/news"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the connection pool behind the article store.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// ArticleStore persists articles keyed by source_url.
type ArticleStore struct {
	pool  execCloser
	table string
}

// New connects a pool and returns the store.
func New(ctx context.Context, cfg Config) (*ArticleStore, error) {
	if cfg.DSN == "" {
		return nil, news.ErrMissingDSN
	}
	table := cfg.Table
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &ArticleStore{pool: pool, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool execCloser, table string) (*ArticleStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ArticleStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *ArticleStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Upsert inserts articles, replacing any existing row with the same
// source_url. Returns the number of rows written.
func (s *ArticleStore) Upsert(ctx context.Context, articles []news.Article) (int, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
	title, description, content, source, source_url,
	image_url, published_at, category, tags, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
ON CONFLICT (source_url) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	content = EXCLUDED.content,
	source = EXCLUDED.source,
	image_url = EXCLUDED.image_url,
	published_at = EXCLUDED.published_at,
	category = EXCLUDED.category,
	tags = EXCLUDED.tags,
	updated_at = now()`, s.table)
	return s.writeAll(ctx, query, articles)
}

// Insert writes articles without conflict handling. Used by the
// rescrape flow after DeleteByURLs has cleared the old rows.
func (s *ArticleStore) Insert(ctx context.Context, articles []news.Article) (int, error) {
	query := fmt.Sprintf(`
INSERT INTO %s (
	title, description, content, source, source_url,
	image_url, published_at, category, tags, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())`, s.table)
	return s.writeAll(ctx, query, articles)
}

func (s *ArticleStore) writeAll(ctx context.Context, query string, articles []news.Article) (int, error) {
	if s == nil || s.pool == nil {
		return 0, fmt.Errorf("article store is not configured")
	}
	written := 0
	for _, a := range articles {
		if a.SourceURL == "" {
			return written, fmt.Errorf("article %q has no source url", a.Title)
		}
		args := []any{
			a.Title,
			a.Description,
			a.Content,
			a.Source,
			a.SourceURL,
			a.ImageURL,
			a.PublishedAt,
			a.Category,
			a.Tags,
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return written, fmt.Errorf("write article %s: %w", a.SourceURL, err)
		}
		written++
	}
	return written, nil
}

// DeleteByURLs removes the rows for the given source URLs.
func (s *ArticleStore) DeleteByURLs(ctx context.Context, urls []string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("article store is not configured")
	}
	if len(urls) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE source_url = ANY($1)`, s.table)
	if _, err := s.pool.Exec(ctx, query, urls); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	return nil
}
