package extractor

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/clock/system"
	"github.com/atlaswire/newscrawler/internal/news"
)

// Thresholds are the per-layer minimum content lengths (in runes). The
// values differ slightly layer to layer on purpose: they were tuned per
// strategy so stub content is rejected instead of stored near-empty.
type Thresholds struct {
	AI         int
	Markdown   int
	Reader     int
	Scrape     int
	SectionDiv int
}

// DefaultThresholds returns the tuned per-layer quality gates.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AI:         300,
		Markdown:   400,
		Reader:     450,
		Scrape:     350,
		SectionDiv: 300,
	}
}

// Pipeline runs the ordered extraction layers and assembles Article
// records. Layers after the first success never run; structured blocks
// and AI key data are appended independently of which layer won.
type Pipeline struct {
	layers []news.Extractor
	clock  news.Clock
	logger *zap.Logger
}

// NewPipeline wires the layer chain. A nil reconstructor disables the AI
// layer entirely; the rest of the chain is unaffected.
func NewPipeline(recon news.ContentReconstructor, th Thresholds, clock news.Clock, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = system.New()
	}
	var layers []news.Extractor
	if recon != nil {
		layers = append(layers, &aiLayer{recon: recon, minLen: th.AI, logger: logger})
	}
	layers = append(layers,
		&markdownLayer{minLen: th.Markdown, minParagraphs: 3},
		&readerLayer{minLen: th.Reader},
		&scrapeLayer{minLen: th.Scrape},
		&sectionDivLayer{minLen: th.SectionDiv, maxBlocks: 5},
	)
	return &Pipeline{layers: layers, clock: clock, logger: logger}
}

// Extract runs the fallback chain for one article page.
func (p *Pipeline) Extract(ctx context.Context, page news.PageInput) (news.ExtractionResult, error) {
	var winner news.ExtractionResult
	var found bool
	for _, layer := range p.layers {
		res, ok := layer.Extract(ctx, page)
		if !ok {
			continue
		}
		winner = res
		found = true
		p.logger.Debug("extraction layer matched",
			zap.String("layer", layer.Name()),
			zap.String("url", page.URL),
			zap.Int("content_len", len(winner.Content)),
		)
		break
	}

	if !found {
		if HasVideoSignature(page.HTML) {
			return news.ExtractionResult{}, news.ErrVideoPage
		}
		return news.ExtractionResult{}, news.ErrNoContent
	}

	if structured := StructuredBlocks(page.HTML); structured != "" &&
		!strings.Contains(winner.Content, structured) {
		winner.Content = strings.TrimSpace(winner.Content) + "\n\n" + structured
	}
	if len(winner.KeyData) > 0 {
		winner.Content = AppendKeyData(winner.Content, winner.KeyData)
	}
	return winner, nil
}

// BuildArticle extracts content and all metadata for one fetched page,
// reporting which layer won. A nil error guarantees the article
// satisfies the persistence contract: non-empty title and content,
// canonical SourceURL, sane PublishedAt.
func (p *Pipeline) BuildArticle(ctx context.Context, fetched news.FetchResult, target news.SiteTarget) (news.Article, string, error) {
	res, err := p.Extract(ctx, news.PageInput{
		HTML:     fetched.HTML,
		URL:      fetched.URL,
		Markdown: fetched.Markdown,
	})
	if err != nil {
		return news.Article{}, "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fetched.HTML))
	if err != nil {
		return news.Article{}, "", err
	}

	title := Title(doc)
	if title == "" || IsNotFoundTitle(title) {
		return news.Article{}, "", news.ErrTitleNotFound
	}

	description := Description(doc)
	if len([]rune(description)) < 40 && res.Summary != "" {
		description = normalizeSpace(res.Summary)
	}

	article := news.Article{
		Title:       title,
		Description: description,
		Content:     res.Content,
		Source:      target.Source,
		SourceURL:   Canonical(doc, fetched.URL),
		ImageURL:    HeroImage(doc, fetched.URL),
		PublishedAt: PublishedAt(doc, p.clock.Now()),
		Category:    target.Category,
		Tags:        InferTags(MetaKeywords(doc), title, description, res.Content),
	}
	return article, res.Layer, nil
}
