package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, genModel, embedModel string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// Embedder adapts the Ollama embeddings endpoint to the embedding port.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.embedModel,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := e.client.postJSON(ctx, "/api/embed", request, &response, "embed"); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d inputs", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Generator produces the user-facing replies for every intent.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateReply(ctx context.Context, intent domain.Intent, question string, history []domain.Turn) (string, error) {
	return g.client.generateText(ctx, buildReplyPrompt(intent, question, history))
}

func (g *Generator) GenerateGroundedAnswer(ctx context.Context, question, contextBlock string, history []domain.Turn) (string, error) {
	return g.client.generateText(ctx, buildGroundedPrompt(question, contextBlock, history))
}

// Classifier is the prompt-engineered intent classifier variant. Transport
// errors surface to the caller; an off-vocabulary label does not, it
// collapses to clarification_needed.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, question string, history []domain.Turn) (domain.Intent, error) {
	label, err := c.client.generateText(ctx, buildClassificationPrompt(question, history))
	if err != nil {
		return "", err
	}
	return domain.ParseIntent(label), nil
}

// VariantGenerator asks the generation model for alternate query phrasings.
type VariantGenerator struct {
	client *Client
}

func NewVariantGenerator(client *Client) *VariantGenerator {
	return &VariantGenerator{client: client}
}

func (v *VariantGenerator) GenerateVariants(ctx context.Context, query string, n int) ([]string, error) {
	raw, err := v.client.generateJSON(ctx, buildVariantPrompt(query, n))
	if err != nil {
		return nil, err
	}

	variants, err := parseVariantList(raw)
	if err != nil {
		return nil, fmt.Errorf("parse variant response: %w", err)
	}
	if len(variants) > n {
		variants = variants[:n]
	}
	return variants, nil
}

// The model is asked for a JSON array; tolerate an object wrapping one.
func parseVariantList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)

	var list []string
	if err := json.Unmarshal([]byte(extractJSONArray(raw)), &list); err != nil {
		var wrapped struct {
			Variants []string `json:"variants"`
		}
		if objErr := json.Unmarshal([]byte(extractJSONObject(raw)), &wrapped); objErr != nil {
			return nil, err
		}
		list = wrapped.Variants
	}

	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
	}
	return c.generate(ctx, reqBody)
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
