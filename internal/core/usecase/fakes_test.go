package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

type fakeIndex struct {
	mu        sync.Mutex
	byQuery   map[string][]domain.Passage
	failQuery map[string]error
	calls     []string
}

func (f *fakeIndex) Query(_ context.Context, query string, k int, _ string) ([]domain.Passage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	if err, ok := f.failQuery[query]; ok {
		return nil, err
	}
	passages := f.byQuery[query]
	if k > 0 && len(passages) > k {
		passages = passages[:k]
	}
	out := make([]domain.Passage, len(passages))
	copy(out, passages)
	return out, nil
}

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := f.vectors[text]
		if !ok {
			v = []float32{0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type fakeScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	err    error
	calls  int
}

func (f *fakeScorer) ScorePairs(_ context.Context, _ string, texts []string) ([]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = f.scores[text]
	}
	return out, nil
}

type fakeScorerProvider struct {
	scorer *fakeScorer
	err    error
	calls  int
}

func (f *fakeScorerProvider) Scorer(context.Context) (ports.CrossEncoderScorer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.scorer, nil
}

type fakeVariantGenerator struct {
	variants []string
	err      error
	calls    int
}

func (f *fakeVariantGenerator) GenerateVariants(_ context.Context, _ string, n int) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := f.variants
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type fakeClassifier struct {
	intent domain.Intent
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string, []domain.Turn) (domain.Intent, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.intent, nil
}

type fakeGenerator struct {
	reply        string
	grounded     string
	replyErr     error
	groundedErr  error
	lastIntent   domain.Intent
	lastContext  string
	lastQuestion string
}

func (f *fakeGenerator) GenerateReply(_ context.Context, intent domain.Intent, question string, _ []domain.Turn) (string, error) {
	f.lastIntent = intent
	f.lastQuestion = question
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeGenerator) GenerateGroundedAnswer(_ context.Context, question, contextBlock string, _ []domain.Turn) (string, error) {
	f.lastQuestion = question
	f.lastContext = contextBlock
	if f.groundedErr != nil {
		return "", f.groundedErr
	}
	return f.grounded, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	history map[string][]domain.Turn
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{history: make(map[string][]domain.Turn)}
}

func (f *fakeSessions) History(sessionID string) []domain.Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history[sessionID]
}

func (f *fakeSessions) AppendTurn(sessionID string, turn domain.Turn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[sessionID] = append(f.history[sessionID], turn)
}

func (f *fakeSessions) Clear(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.history[sessionID]
	delete(f.history, sessionID)
	return ok
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.TurnEvent
	err    error
}

func (f *fakePublisher) PublishTurn(_ context.Context, event domain.TurnEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

var errBackendDown = errors.New("backend down")
