package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

// QueryExpander produces a bounded set of query phrasings for fan-out
// retrieval. The verbatim query is always element 0 and is never dropped.
type QueryExpander struct {
	generator ports.VariantGenerator
}

func NewQueryExpander(generator ports.VariantGenerator) *QueryExpander {
	return &QueryExpander{generator: generator}
}

// Expand never fails and never returns an empty slice. When the variant
// generator is unavailable or errors, cheap case transforms keep recall
// slightly wider than a single phrasing.
func (e *QueryExpander) Expand(ctx context.Context, query string, n int) []string {
	if n < 1 {
		n = 1
	}

	variants := []string{query}
	if n > 1 {
		variants = append(variants, e.generateVariants(ctx, query, n-1)...)
	}

	seen := make(map[string]struct{}, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (e *QueryExpander) generateVariants(ctx context.Context, query string, n int) []string {
	if e.generator != nil {
		generated, err := e.generator.GenerateVariants(ctx, query, n)
		if err == nil && len(generated) > 0 {
			return generated
		}
		if err != nil {
			slog.Warn("variant_generation_failed", "error", err)
		}
	}
	return caseVariants(query)
}

func caseVariants(query string) []string {
	trimmed := strings.TrimSpace(query)
	return []string{strings.ToLower(trimmed), strings.ToUpper(trimmed)}
}
