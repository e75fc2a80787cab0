package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/news"
)

func TestReaderLayer(t *testing.T) {
	layer := &readerLayer{minLen: 450}

	t.Run("main content survives, chrome does not", func(t *testing.T) {
		html := `<html><head><title>Résultats semestriels</title></head><body>
		<nav><a href="/">Accueil</a><a href="/bourse">Bourse</a></nav>
		<article>
		<p>` + prose + `</p>
		<p>` + prose + `</p>
		<p>` + prose + `</p>
		<p>` + prose + `</p>
		</article>
		<footer><p>Tous droits réservés. Mentions légales et politique de confidentialité du site.</p></footer>
		</body></html>`

		res, ok := layer.Extract(context.Background(), news.PageInput{
			HTML: html,
			URL:  "https://www.boursenews.ma/article/resultats",
		})
		require.True(t, ok)
		require.Equal(t, "reader", res.Layer)
		require.Contains(t, res.Content, "conseil d'administration")
		require.NotContains(t, res.Content, "Accueil")
	})

	t.Run("short captions dropped", func(t *testing.T) {
		html := `<html><body><article>
		<p>` + prose + `</p><p>` + prose + `</p><p>` + prose + `</p><p>` + prose + `</p>
		<p>Photo: DR</p>
		</article></body></html>`

		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html, URL: "https://x.ma/a"})
		require.True(t, ok)
		require.NotContains(t, res.Content, "Photo: DR")
	})

	t.Run("thin page fails the gate", func(t *testing.T) {
		html := `<html><body><article><p>` + prose + `</p></article></body></html>`
		_, ok := layer.Extract(context.Background(), news.PageInput{HTML: html, URL: "https://x.ma/b"})
		require.False(t, ok)
	})

	t.Run("invalid url still parses", func(t *testing.T) {
		html := `<html><body><article>` +
			strings.Repeat("<p>"+prose+"</p>", 4) +
			`</article></body></html>`
		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html, URL: "://broken"})
		require.True(t, ok)
		require.NotEmpty(t, res.Content)
	})
}
