package news

import (
	"context"
	"time"
)

// Fetcher retrieves one URL with retries and the anti-bot fallback applied.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) FetchResult
}

// Renderer is the external read-only rendering proxy used for domains
// that serve an interactive bot challenge to the primary fetch path.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (string, error)
}

// Extractor is one fallback layer of the content-extraction chain.
// ok is false when the layer's quality gate was not met; the pipeline
// then falls through to the next layer.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, page PageInput) (ExtractionResult, bool)
}

// PageInput carries everything a layer may need for one article page.
type PageInput struct {
	HTML     string
	URL      string
	Markdown string
}

// ContentReconstructor is the hosted language-model service consumed by
// the AI-assisted layer. Implementations must honor the context deadline
// and are always best-effort: any error disables the layer for that page.
type ContentReconstructor interface {
	Reconstruct(ctx context.Context, plainText string) (ExtractionResult, error)
}

// ArticleStore is the persistence contract for article batches.
type ArticleStore interface {
	Upsert(ctx context.Context, articles []Article) (int, error)
	Insert(ctx context.Context, articles []Article) (int, error)
	DeleteByURLs(ctx context.Context, urls []string) error
}

// Archive stores raw fetched HTML for later re-extraction debugging.
type Archive interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
}

// Publisher pushes batch-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// RetryPolicy decides whether and when a fetch attempt is retried.
type RetryPolicy interface {
	ShouldRetry(statusCode int, err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Clock returns the current time (injectable for the future-date guard).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
