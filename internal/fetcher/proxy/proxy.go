// Package proxy contains the client for the external rendering proxy
// used to read pages from bot-protected domains.
package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config controls the rendering proxy client.
type Config struct {
	// BaseURL is prepended to the target URL, e.g. "https://r.jina.ai/".
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// Renderer fetches a markdown-like rendering of a page through the
// proxy service.
type Renderer struct {
	cfg    Config
	client *http.Client
}

// New builds a Renderer.
func New(cfg Config) (*Renderer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rendering proxy base url is required")
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2 << 20
	}
	return &Renderer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Render fetches the proxy's rendering of rawURL. The proxy executes
// the page's JavaScript on its side, so the body comes back as readable
// markdown-like text.
func (r *Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build proxy request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy render %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("proxy render %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBytes))
	if err != nil {
		return "", fmt.Errorf("read proxy response: %w", err)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("proxy render %s: empty body", rawURL)
	}
	return text, nil
}
