package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// futureDateGrace is the window beyond "now" inside which a publication
// date is still accepted. Some sites embed template placeholder dates,
// which this guard filters out.
const futureDateGrace = 24 * time.Hour

// publishedMetaSelectors are tried in order for structured date metadata.
var publishedMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="date"]`,
	`meta[itemprop="datePublished"]`,
	`meta[name="datePublished"]`,
}

var frenchMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May,
	"juin": time.June, "juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

var (
	frenchTextualDate = regexp.MustCompile(`(?i)\b(\d{1,2})(?:er)?\s+(janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[ûu]t|septembre|octobre|novembre|d[ée]cembre)\s+(\d{4})\b`)
	slashDate         = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	isoDate           = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// PublishedAt walks the date-candidate chain and returns the first
// candidate that parses to a valid timestamp not more than the grace
// window in the future. A nil result means no usable date was found;
// that is not an error, the field is simply absent.
func PublishedAt(doc *goquery.Document, now time.Time) *time.Time {
	for _, candidate := range dateCandidates(doc) {
		parsed, err := parseDateCandidate(candidate)
		if err != nil {
			continue
		}
		if parsed.After(now.Add(futureDateGrace)) {
			continue
		}
		return &parsed
	}
	return nil
}

func dateCandidates(doc *goquery.Document) []string {
	var out []string
	for _, selector := range publishedMetaSelectors {
		if content, ok := metaContent(doc, selector); ok {
			out = append(out, content)
		}
	}
	doc.Find("time[datetime]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if dt, ok := sel.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			out = append(out, strings.TrimSpace(dt))
		}
		return i < 2
	})
	doc.Find(`[class*="date"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := normalizeSpace(sel.Text())
		if text != "" && len(text) < 120 {
			out = append(out, text)
		}
		return i < 4
	})
	// Last resort: textual patterns near the top of the body.
	body := normalizeSpace(doc.Find("body").Text())
	if len(body) > 2000 {
		body = body[:2000]
	}
	if m := frenchTextualDate.FindString(body); m != "" {
		out = append(out, m)
	}
	if m := slashDate.FindString(body); m != "" {
		out = append(out, m)
	}
	if m := isoDate.FindString(body); m != "" {
		out = append(out, m)
	}
	return out
}

func parseDateCandidate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date candidate")
	}

	if m := frenchTextualDate.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := frenchMonths[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if ok && day >= 1 && day <= 31 {
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
		}
	}
	if m := slashDate.FindStringSubmatch(raw); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return dateparse.ParseAny(raw)
}
