package ports

import (
	"context"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// VectorIndex answers similarity queries against one logical partition of the
// index. The backend owns query embedding; callers only see passages.
type VectorIndex interface {
	Query(ctx context.Context, query string, k int, namespace string) ([]domain.Passage, error)
}

// Embedder builds vectors for passage texts and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// CrossEncoderScorer scores (query, passage) pairs jointly. One call scores
// one batch of passage texts against the same query.
type CrossEncoderScorer interface {
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)
}

// CrossEncoderProvider hands out the process-wide scorer instance.
// Construction is expensive; implementations build it lazily, once, and retry
// construction on the next use only if no instance was ever produced.
type CrossEncoderProvider interface {
	Scorer(ctx context.Context) (CrossEncoderScorer, error)
}

// VariantGenerator produces alternate phrasings of a query to widen recall.
type VariantGenerator interface {
	GenerateVariants(ctx context.Context, query string, n int) ([]string, error)
}

// IntentClassifier maps an utterance plus prior turns to an intent label.
type IntentClassifier interface {
	Classify(ctx context.Context, question string, history []domain.Turn) (domain.Intent, error)
}

// ReplyGenerator creates user-facing answers.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, intent domain.Intent, question string, history []domain.Turn) (string, error)
	GenerateGroundedAnswer(ctx context.Context, question, contextBlock string, history []domain.Turn) (string, error)
}

// SessionStore holds bounded per-session turn history with time-based expiry.
// An expired session reads as absent.
type SessionStore interface {
	History(sessionID string) []domain.Turn
	AppendTurn(sessionID string, turn domain.Turn)
	Clear(sessionID string) bool
}

// TurnEventPublisher fans completed exchanges out for analytics. Publishing is
// best-effort; failures must never affect the user-facing response.
type TurnEventPublisher interface {
	PublishTurn(ctx context.Context, event domain.TurnEvent) error
}
