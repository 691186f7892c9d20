package rerank

import (
	"context"
	"sync"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

// Lazy builds the cross-encoder scorer on first use and caches it for the
// process lifetime. Construction failure leaves the cache empty so the next
// caller retries; a cached instance is never rebuilt.
type Lazy struct {
	construct func(ctx context.Context) (ports.CrossEncoderScorer, error)

	mu     sync.Mutex
	scorer ports.CrossEncoderScorer
}

func NewLazy(construct func(ctx context.Context) (ports.CrossEncoderScorer, error)) *Lazy {
	return &Lazy{construct: construct}
}

func (l *Lazy) Scorer(ctx context.Context) (ports.CrossEncoderScorer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.scorer != nil {
		return l.scorer, nil
	}

	scorer, err := l.construct(ctx)
	if err != nil {
		return nil, err
	}
	l.scorer = scorer
	return scorer, nil
}
