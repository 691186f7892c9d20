package domain

import (
	"fmt"
	"strings"
)

type RerankMethod string

const (
	RerankNone         RerankMethod = "none"
	RerankEmbedding    RerankMethod = "embedding"
	RerankCrossEncoder RerankMethod = "cross_encoder"
)

// ParseRerankMethod accepts the historical "cross-encoder" spelling as well.
func ParseRerankMethod(raw string) (RerankMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none":
		return RerankNone, true
	case "embedding":
		return RerankEmbedding, true
	case "cross_encoder", "cross-encoder":
		return RerankCrossEncoder, true
	default:
		return "", false
	}
}

// Passage is a retrieved content unit. Metadata passes through from the index
// backend untouched; the known optional keys are source, file_path, filename,
// title, page and page_number.
type Passage struct {
	Text         string         `json:"text"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Score        float64        `json:"score"`
	RerankScore  *float64       `json:"rerank_score,omitempty"`
	RerankMethod RerankMethod   `json:"rerank_method,omitempty"`
}

// DedupKey is the deduplication identity of a passage: its trimmed text.
func (p Passage) DedupKey() string {
	return strings.TrimSpace(p.Text)
}

// FormattedSource resolves a human-readable source label from metadata,
// appending the page number parenthetically when one is present.
func (p Passage) FormattedSource() string {
	source := "Internal Document"
	for _, key := range []string{"source", "file_path", "filename", "title"} {
		if v := metadataString(p.Metadata, key); v != "" {
			source = v
			break
		}
	}

	for _, key := range []string{"page", "page_number"} {
		if page := metadataString(p.Metadata, key); page != "" && page != "0" {
			return fmt.Sprintf("%s (page %s)", source, page)
		}
	}
	return source
}

func metadataString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// RankedResult is a passage annotated with its final 1-based position.
type RankedResult struct {
	Passage
	Rank int `json:"rank"`
}

type RetrievalRequest struct {
	Query        string       `json:"query"`
	Namespace    string       `json:"namespace,omitempty"`
	K            int          `json:"k,omitempty"`
	RerankMethod RerankMethod `json:"rerank_method,omitempty"`
	RerankTopK   int          `json:"rerank_top_k,omitempty"`
}

type RetrievalDefaults struct {
	K            int
	Namespace    string
	RerankMethod RerankMethod
	RerankTopK   int
}

// Normalize resolves omitted request fields against configured defaults.
// RerankTopK follows K when unset or non-positive.
func (r RetrievalRequest) Normalize(defaults RetrievalDefaults) RetrievalRequest {
	out := r
	if out.K <= 0 {
		out.K = defaults.K
	}
	if out.K <= 0 {
		out.K = 5
	}
	if strings.TrimSpace(out.Namespace) == "" {
		out.Namespace = defaults.Namespace
	}
	if strings.TrimSpace(out.Namespace) == "" {
		out.Namespace = "default"
	}
	if out.RerankMethod == "" {
		out.RerankMethod = defaults.RerankMethod
	}
	if out.RerankMethod == "" {
		out.RerankMethod = RerankNone
	}
	if out.RerankTopK <= 0 {
		out.RerankTopK = defaults.RerankTopK
	}
	if out.RerankTopK <= 0 {
		out.RerankTopK = out.K
	}
	return out
}
