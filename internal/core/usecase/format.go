package usecase

import (
	"fmt"
	"strings"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// NoDocumentsSentinel is injected into generation prompts when retrieval
// produced nothing usable.
const NoDocumentsSentinel = "No relevant documents found."

const contextDelimiter = "----------------------------------------------------------------------"

// FormatForContext renders ranked results as the context block of a
// generation prompt. Only the human-readable source label is exposed, never
// raw backend identifiers.
func FormatForContext(results []domain.RankedResult, maxResults int) string {
	if len(results) == 0 {
		return NoDocumentsSentinel
	}
	if maxResults <= 0 || maxResults > len(results) {
		maxResults = len(results)
	}

	var b strings.Builder
	b.WriteString("=== RETRIEVED DOCUMENTS ===\n")
	for i, result := range results[:maxResults] {
		fmt.Fprintf(&b, "\n[Document %d] %s\n", i+1, result.FormattedSource())
		if score, ok := relevanceOf(result); ok {
			fmt.Fprintf(&b, "Relevance: %.2f%%\n", score*100)
		}
		fmt.Fprintf(&b, "Content:\n%s\n", result.Text)
		b.WriteString(contextDelimiter)
		b.WriteString("\n")
	}
	return b.String()
}

func relevanceOf(result domain.RankedResult) (float64, bool) {
	if result.RerankScore != nil {
		return *result.RerankScore, true
	}
	if result.Score > 0 {
		return result.Score, true
	}
	return 0, false
}
