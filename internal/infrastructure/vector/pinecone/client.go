package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

// Client queries a Pinecone serverless index over its REST data plane. Query
// embedding happens here so the rest of the pipeline only sees passages.
type Client struct {
	indexHost  string
	apiKey     string
	embedder   ports.Embedder
	httpClient *http.Client
}

func New(indexHost, apiKey string, embedder ports.Embedder) *Client {
	return &Client{
		indexHost:  strings.TrimRight(indexHost, "/"),
		apiKey:     apiKey,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Query(ctx context.Context, query string, k int, namespace string) ([]domain.Passage, error) {
	if k <= 0 {
		k = 5
	}

	vector, err := c.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	reqBody := map[string]any{
		"vector":          vector,
		"topK":            k,
		"namespace":       namespace,
		"includeMetadata": true,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal query body: %w", err)
	}

	url := c.indexHost + "/query"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinecone query request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return nil, fmt.Errorf("pinecone query status: %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("pinecone query status: %s", resp.Status)
	}

	var queryResp struct {
		Matches []struct {
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queryResp); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	out := make([]domain.Passage, 0, len(queryResp.Matches))
	for _, match := range queryResp.Matches {
		out = append(out, domain.Passage{
			Text:     passageText(match.Metadata),
			Metadata: match.Metadata,
			Score:    match.Score,
		})
	}
	return out, nil
}

// Index backends store the chunk body under either "text" or "content".
func passageText(metadata map[string]any) string {
	for _, key := range []string{"text", "content"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
