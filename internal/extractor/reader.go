package extractor

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/atlaswire/newscrawler/internal/news"
)

// minParagraphChars is the floor for a <p> to count as article prose in
// the reader layer; shorter blocks are almost always captions or chrome.
const minParagraphChars = 60

// readerLayer is extraction layer 3: a readability-style main-content
// pass, then a re-walk of the resulting sub-tree for paragraphs and lists.
type readerLayer struct {
	minLen int
}

func (l *readerLayer) Name() string { return "reader" }

func (l *readerLayer) Extract(_ context.Context, page news.PageInput) (news.ExtractionResult, bool) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		pageURL = &url.URL{Scheme: "https", Host: "localhost"}
	}
	article, err := readability.FromReader(strings.NewReader(page.HTML), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return news.ExtractionResult{}, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return news.ExtractionResult{}, false
	}

	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := normalizeSpace(p.Text())
		if len([]rune(text)) < minParagraphChars || isBoilerplateLine(text) {
			return
		}
		parts = append(parts, text)
	})
	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		var items []string
		list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			text := normalizeSpace(li.Text())
			if len([]rune(text)) >= minLineLength && !isBoilerplateLine(text) {
				items = append(items, "- "+text)
			}
		})
		if len(items) >= 2 {
			parts = append(parts, listLabel+"\n"+strings.Join(items, "\n"))
		}
	})

	content := strings.Join(parts, "\n\n")
	if len([]rune(content)) < l.minLen {
		return news.ExtractionResult{}, false
	}
	return news.ExtractionResult{Content: content, Layer: l.Name()}, true
}
