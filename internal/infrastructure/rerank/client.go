package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client scores (query, passage) pairs against a hosted cross-encoder
// exposing a TEI-style /rerank endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("cross-encoder url is not configured")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Probe checks the scorer is reachable. Construction of the remote model is
// the expensive part; a failed probe keeps the lazy wrapper in its
// retry-on-next-use state.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cross-encoder probe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cross-encoder probe status: %s", resp.Status)
	}
	return nil
}

// ScorePairs returns one relevance score per text, in input order.
func (c *Client) ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string]any{
		"model":     c.model,
		"query":     query,
		"documents": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cross-encoder rerank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return nil, fmt.Errorf("cross-encoder rerank status: %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("cross-encoder rerank status: %s", resp.Status)
	}

	var rerankResp struct {
		Results []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w", err)
	}
	if len(rerankResp.Results) != len(texts) {
		return nil, fmt.Errorf("cross-encoder returned %d results for %d documents", len(rerankResp.Results), len(texts))
	}

	// The service ranks its response; restore input order via the index field.
	out := make([]float64, len(texts))
	for _, result := range rerankResp.Results {
		if result.Index < 0 || result.Index >= len(texts) {
			return nil, fmt.Errorf("cross-encoder result index %d out of range", result.Index)
		}
		out[result.Index] = result.RelevanceScore
	}
	return out, nil
}
