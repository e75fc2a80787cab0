package extractor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"go.uber.org/zap"

	"github.com/atlaswire/newscrawler/internal/news"
)

// aiInputBudget bounds the plain-text rendering sent to the model.
const aiInputBudget = 12000

const reconstructPreamble = `Tu es un extracteur d'articles de presse. On te donne le texte brut d'une page web d'actualité économique ou financière. Reconstruis uniquement le corps éditorial de l'article: aucun élément de navigation, publicité, commentaire ou widget de partage. Préserve l'ordre des paragraphes, listes et citations. Réponds exclusivement avec un objet JSON de la forme {"content": "...", "summary": "...", "key_data": ["..."]} où key_data contient les faits chiffrés saillants.`

// CohereReconstructor implements ContentReconstructor against the Cohere
// chat API. It is always best-effort: the pipeline treats any error as a
// signal to fall through to the next layer.
type CohereReconstructor struct {
	client  *cohereclient.Client
	model   string
	timeout time.Duration
}

// NewCohereReconstructor builds a reconstructor. The HTTP client forces
// HTTP/1.1 because the Cohere edge intermittently resets HTTP/2 streams.
func NewCohereReconstructor(apiKey, model string, timeout time.Duration) *CohereReconstructor {
	if model == "" {
		model = "command-r-08-2024"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereReconstructor{client: client, model: model, timeout: timeout}
}

// Reconstruct asks the model for the {content, summary, key_data} shape.
func (c *CohereReconstructor) Reconstruct(ctx context.Context, plainText string) (news.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:  plainText,
		Model:    cohere.String(c.model),
		Preamble: cohere.String(reconstructPreamble),
	})
	if err != nil {
		return news.ExtractionResult{}, fmt.Errorf("cohere chat: %w", err)
	}
	return ParseReconstruction(resp.Text)
}

// ParseReconstruction decodes the fixed JSON shape out of a model reply,
// tolerating prose or code fences around the object.
func ParseReconstruction(raw string) (news.ExtractionResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return news.ExtractionResult{}, fmt.Errorf("no JSON object in model reply")
	}
	var payload struct {
		Content string   `json:"content"`
		Summary string   `json:"summary"`
		KeyData []string `json:"key_data"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return news.ExtractionResult{}, fmt.Errorf("decode model reply: %w", err)
	}
	return news.ExtractionResult{
		Content: payload.Content,
		Summary: payload.Summary,
		KeyData: payload.KeyData,
	}, nil
}

// aiLayer is extraction layer 1. It is only registered when a model
// credential is configured; a transport failure, non-JSON reply or short
// result silently yields to layer 2.
type aiLayer struct {
	recon  news.ContentReconstructor
	minLen int
	logger *zap.Logger
}

func (l *aiLayer) Name() string { return "ai" }

func (l *aiLayer) Extract(ctx context.Context, page news.PageInput) (news.ExtractionResult, bool) {
	plain := PlainText(page.HTML, aiInputBudget)
	if plain == "" {
		return news.ExtractionResult{}, false
	}
	res, err := l.recon.Reconstruct(ctx, plain)
	if err != nil {
		l.logger.Debug("ai reconstruction failed", zap.String("url", page.URL), zap.Error(err))
		return news.ExtractionResult{}, false
	}
	content := StripBoilerplate(res.Content)
	if len([]rune(content)) < l.minLen {
		return news.ExtractionResult{}, false
	}
	res.Content = content
	res.Layer = l.Name()
	return res, true
}
