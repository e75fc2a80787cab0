package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atlaswire/newscrawler/internal/news"
)

const prose = "Le conseil d'administration a arrêté les comptes consolidés du premier semestre et confirmé ses objectifs annuels de croissance sur l'ensemble des métiers du groupe."

func TestScrapeLayer(t *testing.T) {
	layer := &scrapeLayer{minLen: 350}

	t.Run("paragraphs and list items scraped from raw html", func(t *testing.T) {
		html := `<html><body>
		<p class="intro">` + prose + `</p>
		<p>` + prose + `</p>
		<li>Un dividende unitaire de 15 dirhams sera proposé.</li>
		<p>court</p>
		<script>document.write("<p>` + prose + `</p>")</script>
		</body></html>`
		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html})
		require.True(t, ok)
		require.Equal(t, "scrape", res.Layer)
		require.Contains(t, res.Content, prose)
		require.Contains(t, res.Content, "- Un dividende unitaire de 15 dirhams sera proposé.")
		require.NotContains(t, res.Content, "court")
		require.Equal(t, 2, strings.Count(res.Content, prose))
	})

	t.Run("boilerplate paragraphs filtered", func(t *testing.T) {
		html := `<p>Partager sur Facebook Twitter LinkedIn et envoyer par WhatsApp à vos contacts</p>` +
			`<p>` + prose + `</p><p>` + prose + `</p><p>` + prose + `</p>`
		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html})
		require.True(t, ok)
		require.NotContains(t, res.Content, "Partager")
	})

	t.Run("below threshold rejected", func(t *testing.T) {
		html := `<p>` + prose[:80] + `</p>`
		_, ok := layer.Extract(context.Background(), news.PageInput{HTML: html})
		require.False(t, ok)
	})
}

func TestSectionDivLayer(t *testing.T) {
	layer := &sectionDivLayer{minLen: 300, maxBlocks: 5}

	t.Run("texte container scraped", func(t *testing.T) {
		html := `<html><body>
		<div class="sidebar">Suivez-nous sur les réseaux sociaux</div>
		<div class="texte-article">` + prose + ` ` + prose + `</div>
		</body></html>`
		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html})
		require.True(t, ok)
		require.Equal(t, "section-div", res.Layer)
		require.Contains(t, res.Content, "conseil d'administration")
		require.NotContains(t, res.Content, "Suivez-nous")
	})

	t.Run("article element fallback", func(t *testing.T) {
		html := `<article><p>` + prose + `</p><p>` + prose + `</p></article>`
		res, ok := layer.Extract(context.Background(), news.PageInput{HTML: html})
		require.True(t, ok)
		require.Contains(t, res.Content, "conseil d'administration")
	})

	t.Run("empty page rejected", func(t *testing.T) {
		_, ok := layer.Extract(context.Background(), news.PageInput{HTML: "<html><body></body></html>"})
		require.False(t, ok)
	})
}
