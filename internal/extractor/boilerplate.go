// Package extractor implements the layered article-content extraction
// pipeline and the metadata extractors that feed the Article record.
package extractor

import (
	"regexp"
	"strings"
)

// minLineLength drops stray fragments (icon labels, orphaned dates,
// single-word navigation entries) that survive tag stripping.
const minLineLength = 20

// boilerplateSignatures match non-editorial lines: sharing widgets,
// ad/sponsor labels, cookie and legal notices, newsletter prompts and
// comment-section chrome, in the French register of the target sites.
var boilerplateSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)partage[rz]?\s+(sur|cet|l'article)`),
	regexp.MustCompile(`(?i)\b(facebook|twitter|linkedin|whatsapp|telegram|pinterest)\b.*\b(facebook|twitter|linkedin|whatsapp|telegram|pinterest)\b`),
	regexp.MustCompile(`(?i)https?://(www\.)?(facebook|twitter|x|linkedin|wa)\.(com|me)/`),
	regexp.MustCompile(`(?i)suivez[- ]nous`),
	regexp.MustCompile(`(?i)abonnez[- ]vous|s'abonner|inscrivez[- ]vous`),
	regexp.MustCompile(`(?i)newsletter`),
	regexp.MustCompile(`(?i)cookies?\b.*(accepte|utilis|param[eè]tr)`),
	regexp.MustCompile(`(?i)politique de confidentialit[ée]|mentions l[ée]gales`),
	regexp.MustCompile(`(?i)tous droits r[ée]serv[ée]s|©\s*\d{4}`),
	regexp.MustCompile(`(?i)\b(publicit[ée]|sponsoris[ée]|contenu sponsor)\b`),
	regexp.MustCompile(`(?i)laisse[rz]? un commentaire|commentaires? \(\d+\)`),
	regexp.MustCompile(`(?i)^(lire|[aà] lire) aussi\b`),
	regexp.MustCompile(`(?i)^articles? (similaires?|li[ée]s)`),
	regexp.MustCompile(`(?i)^cliquez ici\b`),
}

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// StripBoilerplate removes non-editorial lines from a candidate text
// block. It runs over every candidate at every extraction layer, so the
// rules stay deliberately cheap: line-split, length floor, signature
// scan, blank-line collapse.
func StripBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			kept = append(kept, "")
			continue
		}
		if len([]rune(trimmed)) < minLineLength {
			continue
		}
		if isBoilerplateLine(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	out := strings.Join(kept, "\n")
	out = excessBlankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func isBoilerplateLine(line string) bool {
	for _, sig := range boilerplateSignatures {
		if sig.MatchString(line) {
			return true
		}
	}
	return false
}
