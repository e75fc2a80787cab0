package extractor

import (
	"context"
	"regexp"
	"strings"

	"github.com/atlaswire/newscrawler/internal/news"
)

// markdownLayer is extraction layer 2. It only fires when the fetch step
// already produced a markdown-like rendering via the anti-bot proxy.
type markdownLayer struct {
	minLen        int
	minParagraphs int
}

var (
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
)

func (l *markdownLayer) Name() string { return "markdown" }

func (l *markdownLayer) Extract(_ context.Context, page news.PageInput) (news.ExtractionResult, bool) {
	if strings.TrimSpace(page.Markdown) == "" {
		return news.ExtractionResult{}, false
	}

	blocks := strings.Split(page.Markdown, "\n\n")
	var paragraphs []string
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" || isMarkdownChrome(block) {
			continue
		}
		block = markdownImage.ReplaceAllString(block, "")
		block = markdownLink.ReplaceAllString(block, "$1")
		block = StripBoilerplate(normalizeSpace(block))
		if len([]rune(block)) < minLineLength {
			continue
		}
		paragraphs = append(paragraphs, block)
	}

	if len(paragraphs) < l.minParagraphs {
		return news.ExtractionResult{}, false
	}
	content := strings.Join(paragraphs, "\n\n")
	if len([]rune(content)) < l.minLen {
		return news.ExtractionResult{}, false
	}
	return news.ExtractionResult{Content: content, Layer: l.Name()}, true
}

// isMarkdownChrome drops headings, list markers, separators and tables:
// the markdown rendering interleaves navigation as heading/list blocks,
// and structured content is recovered separately.
func isMarkdownChrome(block string) bool {
	switch {
	case strings.HasPrefix(block, "#"),
		strings.HasPrefix(block, "* "),
		strings.HasPrefix(block, "- "),
		strings.HasPrefix(block, "|"),
		strings.HasPrefix(block, ">"),
		strings.HasPrefix(block, "==="),
		strings.HasPrefix(block, "---"):
		return true
	}
	return false
}
