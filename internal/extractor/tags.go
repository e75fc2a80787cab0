package extractor

import (
	"regexp"
	"strings"
)

// tagVocabulary maps free-text triggers to the tag they imply. Triggers
// are matched case-insensitively against title+description+content.
var tagVocabulary = []struct {
	pattern *regexp.Regexp
	tag     string
}{
	{regexp.MustCompile(`(?i)\bmasi\b`), "MASI"},
	{regexp.MustCompile(`(?i)\bmadex\b`), "MADEX"},
	{regexp.MustCompile(`(?i)\bmsi\s?20\b`), "MSI20"},
	{regexp.MustCompile(`(?i)\bbanques?\b|\bbancaire\b`), "banque"},
	{regexp.MustCompile(`(?i)\bbourse\b|\bbours[ei]er\b`), "bourse"},
	{regexp.MustCompile(`(?i)\bcasablanca\b`), "Casablanca"},
	{regexp.MustCompile(`(?i)\bmaroc\b|\bmarocain(e|s)?\b`), "Maroc"},
	{regexp.MustCompile(`(?i)\bdividendes?\b`), "dividendes"},
	{regexp.MustCompile(`(?i)\bobligations?\b|\bobligataire\b`), "obligations"},
	{regexp.MustCompile(`(?i)\binflation\b`), "inflation"},
	{regexp.MustCompile(`(?i)\bcroissance\b|\bpib\b`), "croissance"},
	{regexp.MustCompile(`(?i)\btaux\s+directeur\b`), "taux directeur"},
	{regexp.MustCompile(`(?i)\bbank\s+al[- ]maghrib\b`), "Bank Al-Maghrib"},
	{regexp.MustCompile(`(?i)\br[ée]sultats?\s+(annuels?|semestriels?|trimestriels?)\b`), "résultats"},
	{regexp.MustCompile(`(?i)\bintroduction\s+en\s+bourse\b|\bipo\b`), "IPO"},
	{regexp.MustCompile(`(?i)\bopcvm\b`), "OPCVM"},
}

// tickerSymbols are known Casablanca exchange symbols, matched as whole
// words case-insensitively.
var tickerSymbols = []string{
	"ATW", "IAM", "BCP", "BOA", "CIH", "CDM", "ADH", "ADI", "CMT",
	"HPS", "LHM", "MNG", "MSA", "SBM", "SNP", "TQM", "TGC", "WAA", "SAH",
	"CSR", "DHO", "AKT", "ATL", "CTM", "DLM", "FBR",
}

// ambiguousTickers collide with ordinary French words when folded
// ("les", "gaz", "bal"), so they only match in uppercase.
var ambiguousTickers = []string{"GAZ", "LES", "MUT", "BAL"}

var (
	tickerPattern          = regexp.MustCompile(`(?i)\b(` + strings.Join(tickerSymbols, "|") + `)\b`)
	ambiguousTickerPattern = regexp.MustCompile(`\b(` + strings.Join(ambiguousTickers, "|") + `)\b`)
)

// InferTags unions explicit meta keywords with the vocabulary and ticker
// scans over the article text. The result is deduplicated and preserves
// keyword order first, then vocabulary order.
func InferTags(metaKeywords []string, title, description, content string) []string {
	text := title + "\n" + description + "\n" + content
	seen := make(map[string]struct{})
	var out []string
	add := func(tag string) {
		tag = normalizeSpace(tag)
		if tag == "" {
			return
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}

	for _, kw := range metaKeywords {
		add(kw)
	}
	for _, entry := range tagVocabulary {
		if entry.pattern.MatchString(text) {
			add(entry.tag)
		}
	}
	for _, m := range tickerPattern.FindAllString(text, -1) {
		add(strings.ToUpper(m))
	}
	for _, m := range ambiguousTickerPattern.FindAllString(text, -1) {
		add(m)
	}
	return out
}
