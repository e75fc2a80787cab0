package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Labels prefixed to structured blocks appended after the prose body.
const (
	tableLabel   = "TABLEAU:"
	listLabel    = "LISTE:"
	keyDataLabel = "POINTS CLÉS:"
)

// videoSignatures flag pages that are video players rather than articles.
var videoSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<video[\s>]`),
	regexp.MustCompile(`(?i)(youtube\.com/embed|youtu\.be/|player\.vimeo\.com|dailymotion\.com/embed)`),
	regexp.MustCompile(`(?i)(jwplayer|video-js|videojs|brightcove)`),
}

// HasVideoSignature reports whether the page HTML carries obvious
// video-player markers. Video pages are not a supported content type;
// when no text layer qualifies either, the article is discarded outright.
func HasVideoSignature(html string) bool {
	for _, sig := range videoSignatures {
		if sig.MatchString(html) {
			return true
		}
	}
	return false
}

// StructuredBlocks collects HTML tables and list blocks anywhere on the
// page, stripped to text and labelled. Financial articles frequently
// carry tabular figures the prose-oriented layers miss, so the winning
// layer's body gets these appended regardless of which layer won.
func StructuredBlocks(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	var blocks []string

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows []string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				text := normalizeSpace(cell.Text())
				if text != "" {
					cells = append(cells, text)
				}
			})
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
		})
		if len(rows) >= 2 {
			blocks = append(blocks, tableLabel+"\n"+strings.Join(rows, "\n"))
		}
	})

	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		// Skip obvious navigation and menu lists.
		if class, _ := list.Attr("class"); looksLikeChrome(class) {
			return
		}
		if list.ParentsFiltered("nav, header, footer, aside").Length() > 0 {
			return
		}
		var items []string
		list.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			text := normalizeSpace(li.Text())
			if len([]rune(text)) >= minLineLength && !isBoilerplateLine(text) {
				items = append(items, "- "+text)
			}
		})
		if len(items) >= 2 {
			blocks = append(blocks, listLabel+"\n"+strings.Join(items, "\n"))
		}
	})

	return strings.Join(blocks, "\n\n")
}

// AppendKeyData appends AI-supplied factual bullets as a labelled block,
// skipping bullets already present in the body.
func AppendKeyData(body string, keyData []string) string {
	var fresh []string
	seen := make(map[string]struct{}, len(keyData))
	for _, item := range keyData {
		item = normalizeSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		if strings.Contains(body, item) {
			continue
		}
		fresh = append(fresh, "- "+item)
	}
	if len(fresh) == 0 {
		return body
	}
	return strings.TrimSpace(body) + "\n\n" + keyDataLabel + "\n" + strings.Join(fresh, "\n")
}

// PlainText renders a bounded, boilerplate-light plain-text view of the
// page for the AI layer: headings, paragraphs and list items in document
// order, truncated to maxLen runes.
func PlainText(html string, maxLen int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	var parts []string
	doc.Find("h1, h2, h3, p, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if text == "" || isBoilerplateLine(text) {
			return
		}
		parts = append(parts, text)
	})
	out := strings.Join(parts, "\n")
	runes := []rune(out)
	if maxLen > 0 && len(runes) > maxLen {
		out = string(runes[:maxLen])
	}
	return out
}

var chromeClassHints = []string{"menu", "nav", "share", "social", "footer", "breadcrumb", "tags", "related", "widget"}

func looksLikeChrome(class string) bool {
	class = strings.ToLower(class)
	for _, hint := range chromeClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

var spaceRun = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
