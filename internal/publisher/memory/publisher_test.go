package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/news"
)

func TestPublisherRecordsJSONPayloads(t *testing.T) {
	t.Parallel()

	pub := New()
	id, err := pub.Publish(context.Background(), "crawl-batches", news.BatchEvent{
		RunID:            "run-1",
		ArticlesInserted: 7,
		Sites:            []string{"Boursenews"},
	})
	require.NoError(t, err)
	require.Equal(t, "memory-1", id)

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "crawl-batches", msgs[0].Topic)
	require.Contains(t, string(msgs[0].Data), `"articles_inserted":7`)

	_, err = pub.Publish(context.Background(), "crawl-batches", make(chan int))
	require.Error(t, err)
}
