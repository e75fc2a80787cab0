// Package discovery scans listing-page HTML for candidate article URLs.
package discovery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/atlaswire/newscrawler/internal/news"
)

// hrefPattern matches single- or double-quoted anchor targets in raw HTML.
// Listing pages on several targets are malformed enough that a DOM parse
// silently drops anchors, so the scan works on the raw bytes.
var hrefPattern = regexp.MustCompile(`href\s*=\s*["']([^"'#][^"']*)["']`)

// globalExcludes apply uniformly across all sites: video/media paths and
// static-asset URLs are never article candidates.
var globalExcludes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/videos?/`),
	regexp.MustCompile(`(?i)/podcasts?/`),
	regexp.MustCompile(`(?i)/galerie|/diaporama`),
	regexp.MustCompile(`(?i)\.(css|js|json|xml|pdf|zip)(\?|$)`),
	regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|svg|ico)(\?|$)`),
	regexp.MustCompile(`(?i)\.(mp4|mp3|avi|mov|webm|m3u8)(\?|$)`),
	regexp.MustCompile(`(?i)\.(woff2?|ttf|eot|otf)(\?|$)`),
	regexp.MustCompile(`(?i)^(mailto|tel|javascript|whatsapp):`),
}

// Links extracts, resolves, filters and deduplicates candidate article
// URLs from listing-page HTML. The result preserves first-seen order;
// the caller truncates it to the per-site candidate cap.
func Links(html, baseURL string, target news.SiteTarget) []string {
	matches := hrefPattern.FindAllStringSubmatch(html, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string

	for _, m := range matches {
		href := strings.TrimSpace(m[1])
		if href == "" || isGloballyExcluded(href) {
			continue
		}

		absolute, err := news.ResolveURL(baseURL, href)
		if err != nil {
			continue
		}
		parsed, err := url.Parse(absolute)
		if err != nil || parsed.Host == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(parsed.Hostname()), strings.ToLower(target.Domain)) {
			continue
		}
		if len(target.IncludePatterns) > 0 && !matchesAny(absolute, target.IncludePatterns) {
			continue
		}
		if matchesAny(absolute, target.ExcludePatterns) || isGloballyExcluded(absolute) {
			continue
		}

		parsed.RawQuery = ""
		parsed.Fragment = ""
		normalized := parsed.String()
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

func matchesAny(candidate string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(candidate) {
			return true
		}
	}
	return false
}

func isGloballyExcluded(candidate string) bool {
	return matchesAny(candidate, globalExcludes)
}
