package extractor

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/atlaswire/newscrawler/internal/news"
)

var (
	paragraphBlock = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	listItemBlock  = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	anyTag         = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptBlock    = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	commentBlock   = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockBoundary  = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr)>|<br\s*/?>`)
)

// sectionDivPatterns are the container-class heuristics of the last-resort
// layer, tried in order against the raw HTML.
var sectionDivPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*texte[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*content[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*article[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*post[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`),
	regexp.MustCompile(`(?is)<main[^>]*>(.*?)</main>`),
}

// scrapeLayer is extraction layer 4: a DOM-free pattern match of <p> and
// <li> blocks against the raw HTML, for pages whose markup is too broken
// for the reader pass.
type scrapeLayer struct {
	minLen int
}

func (l *scrapeLayer) Name() string { return "scrape" }

func (l *scrapeLayer) Extract(_ context.Context, page news.PageInput) (news.ExtractionResult, bool) {
	cleaned := stripNonContent(page.HTML)

	var parts []string
	for _, m := range paragraphBlock.FindAllStringSubmatch(cleaned, -1) {
		text := tagFreeText(m[1])
		if len([]rune(text)) < minParagraphChars || isBoilerplateLine(text) {
			continue
		}
		parts = append(parts, text)
	}
	for _, m := range listItemBlock.FindAllStringSubmatch(cleaned, -1) {
		text := tagFreeText(m[1])
		if len([]rune(text)) < minLineLength || isBoilerplateLine(text) {
			continue
		}
		parts = append(parts, "- "+text)
	}

	content := strings.Join(parts, "\n\n")
	if len([]rune(content)) < l.minLen {
		return news.ExtractionResult{}, false
	}
	return news.ExtractionResult{Content: content, Layer: l.Name()}, true
}

// sectionDivLayer is extraction layer 5, the absolute last resort: pull
// text out of labelled content containers, keeping the first qualifying
// blocks only.
type sectionDivLayer struct {
	minLen    int
	maxBlocks int
}

func (l *sectionDivLayer) Name() string { return "section-div" }

func (l *sectionDivLayer) Extract(_ context.Context, page news.PageInput) (news.ExtractionResult, bool) {
	cleaned := stripNonContent(page.HTML)
	maxBlocks := l.maxBlocks
	if maxBlocks <= 0 {
		maxBlocks = 5
	}

	var parts []string
	for _, pattern := range sectionDivPatterns {
		for _, m := range pattern.FindAllStringSubmatch(cleaned, -1) {
			text := StripBoilerplate(tagFreeLines(m[1]))
			if len([]rune(text)) < minParagraphChars {
				continue
			}
			parts = append(parts, text)
			if len(parts) >= maxBlocks {
				break
			}
		}
		if len(parts) >= maxBlocks {
			break
		}
	}

	content := strings.Join(parts, "\n\n")
	if len([]rune(content)) < l.minLen {
		return news.ExtractionResult{}, false
	}
	return news.ExtractionResult{Content: content, Layer: l.Name()}, true
}

func stripNonContent(raw string) string {
	cleaned := scriptBlock.ReplaceAllString(raw, " ")
	return commentBlock.ReplaceAllString(cleaned, " ")
}

// tagFreeText flattens an HTML fragment into one normalized line.
func tagFreeText(fragment string) string {
	return normalizeSpace(html.UnescapeString(anyTag.ReplaceAllString(fragment, " ")))
}

// tagFreeLines flattens an HTML fragment keeping block boundaries as
// newlines, so the boilerplate stripper can judge line by line.
func tagFreeLines(fragment string) string {
	fragment = blockBoundary.ReplaceAllString(fragment, "\n")
	fragment = anyTag.ReplaceAllString(fragment, " ")
	lines := strings.Split(html.UnescapeString(fragment), "\n")
	for i, line := range lines {
		lines[i] = normalizeSpace(line)
	}
	return strings.Join(lines, "\n")
}
