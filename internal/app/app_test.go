package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/config"
)

func TestNewWithMinimalConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Logger)
	require.NotNil(t, a.Orchestrator)
	require.NotEmpty(t, a.Registry.Targets())
}

func TestNewWithProxyConfigured(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Proxy.BaseURL = "https://r.jina.ai/"

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	a.Close()
}
