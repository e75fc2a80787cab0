package extractor

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/news"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type stubReconstructor struct {
	result news.ExtractionResult
	err    error
}

func (s *stubReconstructor) Reconstruct(_ context.Context, _ string) (news.ExtractionResult, error) {
	return s.result, s.err
}

func testClock() fixedClock {
	return fixedClock{t: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
}

func longProse(n int) string {
	return strings.TrimSpace(strings.Repeat(prose+" ", n))
}

func articlePage(body string) string {
	return `<html><head><title>Maroc: croissance 2% au T3</title></head><body>` + body + `</body></html>`
}

func TestPipeline_AILayerWins(t *testing.T) {
	recon := &stubReconstructor{result: news.ExtractionResult{
		Content: longProse(3),
		Summary: "Résumé de l'article",
		KeyData: []string{"PIB: +2% au T3"},
	}}
	p := NewPipeline(recon, DefaultThresholds(), testClock(), zap.NewNop())

	res, err := p.Extract(context.Background(), news.PageInput{
		HTML: articlePage("<p>" + prose + "</p>"),
		URL:  "https://www.boursenews.ma/article/eco/pib",
	})
	require.NoError(t, err)
	require.Equal(t, "ai", res.Layer)
	require.Contains(t, res.Content, "POINTS CLÉS:")
	require.Contains(t, res.Content, "- PIB: +2% au T3")
}

func TestPipeline_AIFailureFallsThrough(t *testing.T) {
	recon := &stubReconstructor{err: errors.New("timeout")}
	p := NewPipeline(recon, DefaultThresholds(), testClock(), zap.NewNop())

	html := articlePage("<div class=\"article-body\"><p>" + prose + "</p><p>" + prose + "</p><p>" + prose + "</p><p>" + prose + "</p></div>")
	res, err := p.Extract(context.Background(), news.PageInput{HTML: html, URL: "https://x.ma/a"})
	require.NoError(t, err)
	require.NotEqual(t, "ai", res.Layer)
	require.GreaterOrEqual(t, len([]rune(res.Content)), 350)
}

func TestPipeline_NoReconstructorDisablesAILayer(t *testing.T) {
	p := NewPipeline(nil, DefaultThresholds(), testClock(), zap.NewNop())
	for _, layer := range p.layers {
		require.NotEqual(t, "ai", layer.Name())
	}
}

func TestPipeline_MarkdownHintBeatsReader(t *testing.T) {
	p := NewPipeline(nil, DefaultThresholds(), testClock(), zap.NewNop())
	md := longProse(2) + "\n\n" + longProse(2) + "\n\n" + longProse(2)
	res, err := p.Extract(context.Background(), news.PageInput{
		HTML:     articlePage("<p>" + prose + "</p>"),
		Markdown: md,
		URL:      "https://www.medias24.com/2026/08/31/article",
	})
	require.NoError(t, err)
	require.Equal(t, "markdown", res.Layer)
}

func TestPipeline_VideoPageRejected(t *testing.T) {
	p := NewPipeline(nil, DefaultThresholds(), testClock(), zap.NewNop())
	html := `<html><body><iframe src="https://www.youtube.com/embed/x"></iframe><p>Regardez la vidéo.</p></body></html>`
	_, err := p.Extract(context.Background(), news.PageInput{HTML: html, URL: "https://x.ma/v"})
	require.ErrorIs(t, err, news.ErrVideoPage)
}

func TestPipeline_EmptyPageRejected(t *testing.T) {
	p := NewPipeline(nil, DefaultThresholds(), testClock(), zap.NewNop())
	_, err := p.Extract(context.Background(), news.PageInput{HTML: "<html><body></body></html>", URL: "https://x.ma/e"})
	require.ErrorIs(t, err, news.ErrNoContent)
}

func TestBuildArticle(t *testing.T) {
	target := news.SiteTarget{
		Source:   "Boursenews",
		Category: "Boursenews",
		Domain:   "boursenews.ma",
	}
	p := NewPipeline(nil, DefaultThresholds(), testClock(), zap.NewNop())

	t.Run("full article from title tag and one long paragraph", func(t *testing.T) {
		body := "<article><p>" + longProse(4) + "</p></article>"
		html := articlePage(body)
		article, layer, err := p.BuildArticle(context.Background(), news.FetchResult{
			URL:  "https://www.boursenews.ma/article/eco/croissance-t3?utm=x",
			HTML: html,
		}, target)
		require.NoError(t, err)
		require.NotEmpty(t, layer)
		require.Equal(t, "Maroc: croissance 2% au T3", article.Title)
		require.GreaterOrEqual(t, len([]rune(article.Content)), 450)
		require.Equal(t, "https://www.boursenews.ma/article/eco/croissance-t3", article.SourceURL)
		require.Equal(t, "Boursenews", article.Source)
		require.Equal(t, "Boursenews", article.Category)
		for _, tag := range article.Tags {
			require.False(t, regexp.MustCompile(`^(ATW|IAM|BCP)$`).MatchString(tag),
				"unexpected ticker tag %s", tag)
		}
	})

	t.Run("not-found title discards article", func(t *testing.T) {
		html := `<html><head><title>Page non trouvée</title></head><body><article><p>` +
			longProse(4) + `</p></article></body></html>`
		_, _, err := p.BuildArticle(context.Background(), news.FetchResult{
			URL:  "https://www.boursenews.ma/article/x",
			HTML: html,
		}, target)
		require.ErrorIs(t, err, news.ErrTitleNotFound)
	})

	t.Run("ai summary fills missing description", func(t *testing.T) {
		recon := &stubReconstructor{result: news.ExtractionResult{
			Content: longProse(3),
			Summary: "Une synthèse produite par le modèle.",
		}}
		pp := NewPipeline(recon, DefaultThresholds(), testClock(), zap.NewNop())
		article, layer, err := pp.BuildArticle(context.Background(), news.FetchResult{
			URL:  "https://www.boursenews.ma/article/y",
			HTML: articlePage("<p>" + prose + "</p>"),
		}, target)
		require.NoError(t, err)
		require.Equal(t, "ai", layer)
		require.Equal(t, "Une synthèse produite par le modèle.", article.Description)
	})

	t.Run("same page twice yields same source url", func(t *testing.T) {
		html := articlePage("<article><p>" + longProse(4) + "</p></article>")
		fr := news.FetchResult{URL: "https://www.boursenews.ma/article/idem", HTML: html}
		first, _, err := p.BuildArticle(context.Background(), fr, target)
		require.NoError(t, err)
		second, _, err := p.BuildArticle(context.Background(), fr, target)
		require.NoError(t, err)
		require.Equal(t, first.SourceURL, second.SourceURL)
		require.Equal(t, first.Content, second.Content)
	})
}
