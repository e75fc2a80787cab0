// Package registry declares the static crawl targets and their URL pattern sets.
//
// Every publication in the source set uses a different URL scheme
// (date-segmented paths, /article/ prefixes, .html suffixes, category
// slugs), so each target carries its own include/exclude regex sets.
// Patterns are compiled once here and shared read-only afterwards.
package registry

import (
	"regexp"
	"strings"

	"github.com/atlaswire/newscrawler/internal/news"
)

type siteSpec struct {
	listingURL string
	source     string
	category   string
	domain     string
	include    []string
	exclude    []string
}

var siteSpecs = []siteSpec{
	{
		listingURL: "https://www.boursenews.ma/marches",
		source:     "Boursenews",
		category:   "Boursenews",
		domain:     "boursenews.ma",
		include:    []string{`/article/`},
		exclude:    []string{`/article/breves`, `/tag/`},
	},
	{
		listingURL: "https://leboursier.ma/actualite-economique",
		source:     "LeBoursier",
		category:   "LeBoursier",
		domain:     "leboursier.ma",
		include:    []string{`/news/\d+`, `/actualite/`},
		exclude:    []string{`/auteur/`},
	},
	{
		listingURL: "https://medias24.com/categorie/economie/",
		source:     "Médias24",
		category:   "Médias24",
		domain:     "medias24.com",
		include:    []string{`/\d{4}/\d{2}/\d{2}/`},
		exclude:    []string{`/categorie/`, `/auteur/`},
	},
	{
		listingURL: "https://lematin.ma/economie",
		source:     "Le Matin",
		category:   "Le Matin",
		domain:     "lematin.ma",
		include:    []string{`/journal/`, `/express/`, `-\d+\.html$`},
		exclude:    []string{`/evenement/`},
	},
	{
		listingURL: "https://www.challenge.ma/category/economie/",
		source:     "Challenge",
		category:   "Challenge",
		domain:     "challenge.ma",
		include:    []string{`challenge\.ma/[a-z0-9-]+-\d+/?$`},
		exclude:    []string{`/category/`, `/tag/`},
	},
	{
		listingURL: "https://www.ecoactu.ma/category/economie-nationale/",
		source:     "EcoActu",
		category:   "EcoActu",
		domain:     "ecoactu.ma",
		include:    []string{`ecoactu\.ma/[a-z0-9-]+/?$`},
		exclude:    []string{`/category/`, `/author/`, `/page/`},
	},
	{
		listingURL: "https://fnh.ma/articles/actualite-financiere-maroc",
		source:     "Finances News Hebdo",
		category:   "Finances News Hebdo",
		domain:     "fnh.ma",
		include:    []string{`/article/`},
		exclude:    []string{`/articles/`},
	},
	{
		listingURL: "https://www.lavieeco.com/economie/",
		source:     "La Vie Éco",
		category:   "La Vie Éco",
		domain:     "lavieeco.com",
		include:    []string{`lavieeco\.com/(economie|argent|affaires)/[a-z0-9-]+/?$`},
		exclude:    []string{`/page/`},
	},
	{
		listingURL: "https://laquotidienne.ma/rubrique/economie",
		source:     "La Quotidienne",
		category:   "La Quotidienne",
		domain:     "laquotidienne.ma",
		include:    []string{`/article/`},
		exclude:    []string{`/rubrique/`},
	},
	{
		listingURL: "https://fr.hespress.com/economie",
		source:     "Hespress",
		category:   "Hespress",
		domain:     "hespress.com",
		include:    []string{`hespress\.com/[a-z0-9-]+-\d+\.html$`},
		exclude:    []string{`/videos?/`},
	},
}

// challengeDomains are known to serve an interactive bot challenge to the
// primary fetch path; the fetcher goes straight to the rendering proxy
// fallback once the challenge signature (or a 403) shows up.
var challengeDomains = []string{
	"medias24.com",
	"lavieeco.com",
}

// Registry exposes the immutable site target list.
type Registry struct {
	targets []news.SiteTarget
}

// New builds the default registry, compiling every pattern once.
func New() *Registry {
	targets := make([]news.SiteTarget, 0, len(siteSpecs))
	for _, s := range siteSpecs {
		targets = append(targets, news.SiteTarget{
			ListingURL:      s.listingURL,
			Source:          s.source,
			Category:        s.category,
			Domain:          s.domain,
			IncludePatterns: compileAll(s.include),
			ExcludePatterns: compileAll(s.exclude),
		})
	}
	return &Registry{targets: targets}
}

// NewWithTargets builds a registry over an explicit target list (tests).
func NewWithTargets(targets []news.SiteTarget) *Registry {
	return &Registry{targets: targets}
}

// Targets returns the full target list in declaration order.
func (r *Registry) Targets() []news.SiteTarget {
	return r.targets
}

// Select filters targets by source-name allowlist. An empty allowlist
// selects everything. Matching is case-insensitive on the source label.
func (r *Registry) Select(names []string) []news.SiteTarget {
	if len(names) == 0 {
		return r.targets
	}
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	out := make([]news.SiteTarget, 0, len(names))
	for _, t := range r.targets {
		if _, ok := allowed[strings.ToLower(t.Source)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// OwnerOf returns the target whose domain owns the given URL, if any.
// Rescrape mode uses this to narrow extraction to the owning sites.
func (r *Registry) OwnerOf(rawURL string) (news.SiteTarget, bool) {
	lower := strings.ToLower(rawURL)
	for _, t := range r.targets {
		if strings.Contains(lower, t.Domain) {
			return t, true
		}
	}
	return news.SiteTarget{}, false
}

// IsChallengeDomain reports whether the host is on the known bot-challenge list.
func IsChallengeDomain(host string) bool {
	host = strings.ToLower(host)
	for _, d := range challengeDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
