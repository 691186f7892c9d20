package ports

import (
	"context"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// ChatService is the inbound contract for a routed conversational exchange.
type ChatService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
	ClearSession(sessionID string) bool
}

// DocumentSearcher is the inbound contract for the retrieval pipeline.
// Search never fails: degraded backends surface as an empty result set.
type DocumentSearcher interface {
	Search(ctx context.Context, req domain.RetrievalRequest) []domain.RankedResult
}
