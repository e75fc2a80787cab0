package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlaswire/newscrawler/internal/news"
)

// heroMetaSelectors are tried in order for the hero image.
var heroMetaSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:secure_url"]`,
	`meta[name="twitter:image"]`,
	`meta[name="image"]`,
	`meta[itemprop="image"]`,
}

// lazyLoadAttrs are checked before src, because most targets defer the
// real image URL behind a lazy-load attribute.
var lazyLoadAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-actualsrc"}

// contentImageContainers are likely article-image homes, tried after meta tags.
var contentImageContainers = []string{
	"article img", "main img", "header img",
	".article-content img", ".post-content img", ".entry-content img", ".featured-image img",
}

// nonContentImage filters logos, placeholders, avatars and tracking pixels.
var nonContentImage = regexp.MustCompile(`(?i)(logo|placeholder|avatar|default|icon|sprite|blank|pixel|spacer|1x1)`)

// HeroImage resolves the article's hero image to an absolute URL, or
// returns empty when no plausible candidate exists.
func HeroImage(doc *goquery.Document, pageURL string) string {
	for _, candidate := range heroImageCandidates(doc) {
		absolute, err := news.ResolveURL(pageURL, candidate)
		if err != nil {
			continue
		}
		if nonContentImage.MatchString(absolute) {
			continue
		}
		return absolute
	}
	return ""
}

func heroImageCandidates(doc *goquery.Document) []string {
	var out []string
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw != "" && !strings.HasPrefix(raw, "data:") {
			out = append(out, raw)
		}
	}

	for _, selector := range heroMetaSelectors {
		if content, ok := metaContent(doc, selector); ok {
			add(content)
		}
	}

	for _, selector := range contentImageContainers {
		doc.Find(selector).EachWithBreak(func(i int, img *goquery.Selection) bool {
			add(imageSource(img))
			return i < 2
		})
	}

	if srcset, ok := doc.Find("picture source[srcset]").First().Attr("srcset"); ok {
		add(firstSrcsetCandidate(srcset))
	}

	doc.Find("img").EachWithBreak(func(i int, img *goquery.Selection) bool {
		add(imageSource(img))
		return i < 2
	})

	return out
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range lazyLoadAttrs {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	src, _ := img.Attr("src")
	return src
}

func firstSrcsetCandidate(srcset string) string {
	first := strings.Split(srcset, ",")[0]
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(first), " ", 2)[0])
}
