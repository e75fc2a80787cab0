package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	p := ObjectPath("Finances News Hebdo", "https://fnh.ma/article/bourse?x=1", at)
	require.True(t, strings.HasPrefix(p, "finances-news-hebdo/2026/08/31/"))
	require.True(t, strings.HasSuffix(p, ".html"))

	again := ObjectPath("Finances News Hebdo", "https://fnh.ma/article/bourse?x=1", at)
	require.Equal(t, p, again)

	other := ObjectPath("Finances News Hebdo", "https://fnh.ma/article/autre", at)
	require.NotEqual(t, p, other)

	require.True(t, strings.HasPrefix(ObjectPath("", "https://x.ma/a", at), "unknown/"))
}

func TestMemoryArchive(t *testing.T) {
	t.Parallel()

	a := NewMemory()
	uri, err := a.Put(context.Background(), "boursenews/2026/08/31/abc.html", []byte("<html/>"))
	require.NoError(t, err)
	require.Equal(t, "memory://boursenews/2026/08/31/abc.html", uri)

	got, ok := a.Get("boursenews/2026/08/31/abc.html")
	require.True(t, ok)
	require.Equal(t, []byte("<html/>"), got)

	_, err = a.Put(context.Background(), "", nil)
	require.Error(t, err)
}
