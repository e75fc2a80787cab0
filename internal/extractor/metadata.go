package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/atlaswire/newscrawler/internal/news"
)

// notFoundTitle flags error pages masquerading as articles; a match
// discards the whole article.
var notFoundTitle = regexp.MustCompile(`(?i)(page|article|contenu)\s+(introuvable|non\s+trouv[ée]e?|not\s+found)|not\s+found|erreur\s*404|\b404\b|n'existe\s+(pas|plus)`)

// Title prefers og:title over the <title> tag.
func Title(doc *goquery.Document) string {
	if og, ok := metaContent(doc, `meta[property="og:title"]`); ok {
		return og
	}
	return normalizeSpace(doc.Find("title").First().Text())
}

// IsNotFoundTitle reports whether a title matches the not-found heuristic.
func IsNotFoundTitle(title string) bool {
	return notFoundTitle.MatchString(title)
}

// Description prefers the description meta value, then og:description.
// The caller substitutes the AI summary when this comes back short.
func Description(doc *goquery.Document) string {
	if desc, ok := metaContent(doc, `meta[name="description"]`); ok {
		return desc
	}
	if desc, ok := metaContent(doc, `meta[property="og:description"]`); ok {
		return desc
	}
	return ""
}

// Canonical resolves the persistence key: <link rel=canonical>, then
// og:url, then the fetched URL itself, always query/fragment-stripped.
func Canonical(doc *goquery.Document, fetchedURL string) string {
	candidates := []string{fetchedURL}
	if og, ok := metaContent(doc, `meta[property="og:url"]`); ok {
		candidates = append([]string{og}, candidates...)
	}
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		candidates = append([]string{strings.TrimSpace(href)}, candidates...)
	}
	for _, raw := range candidates {
		if canonical, err := news.CanonicalURL(raw); err == nil {
			return canonical
		}
	}
	return fetchedURL
}

// MetaKeywords splits the keywords meta value on commas.
func MetaKeywords(doc *goquery.Document) []string {
	raw, ok := metaContent(doc, `meta[name="keywords"]`)
	if !ok {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = normalizeSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func metaContent(doc *goquery.Document, selector string) (string, bool) {
	content, ok := doc.Find(selector).First().Attr("content")
	content = normalizeSpace(content)
	return content, ok && content != ""
}
