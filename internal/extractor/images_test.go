package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeroImage(t *testing.T) {
	pageURL := "https://www.boursenews.ma/article/marches/masi"

	t.Run("og:image preferred", func(t *testing.T) {
		doc := docFrom(t, `<html><head>
			<meta property="og:image" content="https://cdn.boursenews.ma/photos/masi.jpg">
		</head><body><img src="/img/logo.png"></body></html>`)
		require.Equal(t, "https://cdn.boursenews.ma/photos/masi.jpg", HeroImage(doc, pageURL))
	})

	t.Run("relative meta image resolved against page url", func(t *testing.T) {
		doc := docFrom(t, `<html><head>
			<meta name="twitter:image" content="/photos/seance.jpg">
		</head></html>`)
		require.Equal(t, "https://www.boursenews.ma/photos/seance.jpg", HeroImage(doc, pageURL))
	})

	t.Run("lazy-load attribute beats src", func(t *testing.T) {
		doc := docFrom(t, `<html><body><article>
			<img src="/img/placeholder.gif" data-src="/photos/bourse-casablanca.jpg">
		</article></body></html>`)
		require.Equal(t, "https://www.boursenews.ma/photos/bourse-casablanca.jpg", HeroImage(doc, pageURL))
	})

	t.Run("logo and placeholder candidates filtered", func(t *testing.T) {
		doc := docFrom(t, `<html><head>
			<meta property="og:image" content="/img/logo-site.png">
		</head><body><article><img src="/photos/reelle.jpg"></article></body></html>`)
		require.Equal(t, "https://www.boursenews.ma/photos/reelle.jpg", HeroImage(doc, pageURL))
	})

	t.Run("picture srcset first candidate", func(t *testing.T) {
		doc := docFrom(t, `<html><body><div>
			<picture>
				<source srcset="/photos/hero-800.jpg 800w, /photos/hero-1600.jpg 1600w">
			</picture>
		</div></body></html>`)
		require.Equal(t, "https://www.boursenews.ma/photos/hero-800.jpg", HeroImage(doc, pageURL))
	})

	t.Run("no plausible candidate yields empty", func(t *testing.T) {
		doc := docFrom(t, `<html><body><img src="/img/logo.png"><img src="/img/avatar-default.png"></body></html>`)
		require.Empty(t, HeroImage(doc, pageURL))
	})
}
