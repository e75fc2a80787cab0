package collyfetcher

import (
	"html"
	"regexp"
	"strings"
)

// challengeSignatures identify interactive bot-challenge interstitials.
// The primary fetch path cannot execute the challenge's client-side
// logic, so a match routes the URL to the rendering-proxy fallback.
var challengeSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)cf-browser-verification|_cf_chl|challenge-platform`),
	regexp.MustCompile(`(?i)just a moment`),
	regexp.MustCompile(`(?i)verifying you are human|vérification que vous êtes humain`),
	regexp.MustCompile(`(?i)datadome`),
	regexp.MustCompile(`(?i)ddos[- ]?protection`),
	regexp.MustCompile(`(?i)enable javascript and cookies to continue`),
	regexp.MustCompile(`(?i)captcha-delivery\.com|geo\.captcha`),
}

// IsChallengePage scans a response body for bot-challenge markers.
func IsChallengePage(body string) bool {
	if body == "" {
		return false
	}
	// Challenge interstitials are small; scanning a bounded prefix keeps
	// the signature pass cheap on real article pages.
	if len(body) > 20000 {
		body = body[:20000]
	}
	for _, sig := range challengeSignatures {
		if sig.MatchString(body) {
			return true
		}
	}
	return false
}

var (
	mdImage   = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)
	mdLink    = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)[^)]*\)`)
	mdHeading = regexp.MustCompile(`^(#{1,6})\s*(.+)$`)
)

// MarkdownToHTML converts the proxy's markdown-like rendering into a
// minimal HTML document: blank-line-separated blocks become paragraphs,
// images and links are re-synthesized as <img>/<a> tags, headings keep
// their level. The result is only ever consumed by the extraction
// pipeline, never served.
func MarkdownToHTML(markdown string) string {
	blocks := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n\n")
	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if m := mdHeading.FindStringSubmatch(block); m != nil {
			level := len(m[1])
			b.WriteString("<h")
			b.WriteByte(byte('0' + level))
			b.WriteString(">")
			b.WriteString(html.EscapeString(strings.TrimSpace(m[2])))
			b.WriteString("</h")
			b.WriteByte(byte('0' + level))
			b.WriteString(">\n")
			continue
		}
		line := strings.Join(strings.Fields(block), " ")
		line = html.EscapeString(line)
		line = mdImage.ReplaceAllString(line, `<img src="$2" alt="$1">`)
		line = mdLink.ReplaceAllString(line, `<a href="$2">$1</a>`)
		b.WriteString("<p>")
		b.WriteString(line)
		b.WriteString("</p>\n")
	}
	b.WriteString("</body></html>")
	return b.String()
}
