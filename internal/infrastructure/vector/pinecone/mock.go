package pinecone

import (
	"context"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// MockIndex is the permanent fallback used when no Pinecone credential is
// configured. It serves a small fixed corpus so the rest of the pipeline
// stays exercisable offline.
type MockIndex struct {
	corpus []domain.Passage
}

func NewMockIndex() *MockIndex {
	return &MockIndex{
		corpus: []domain.Passage{
			{
				Text: "Reimbursement procedure: employees must open a ticket in the " +
					"internal system and attach the travel receipts.",
				Metadata: map[string]any{"source": "Travel Manual", "page": 2},
				Score:    0.92,
			},
			{
				Text: "Vacation policy: requests must be approved by the manager and " +
					"registered with HR 30 days in advance.",
				Metadata: map[string]any{"source": "Vacation Policy", "page": 5},
				Score:    0.88,
			},
			{
				Text: "Overtime rules: extra hours require prior written approval and " +
					"are compensated following the collective agreement.",
				Metadata: map[string]any{"source": "HR Handbook", "page": 11},
				Score:    0.81,
			},
		},
	}
}

func (m *MockIndex) Query(_ context.Context, _ string, k int, _ string) ([]domain.Passage, error) {
	if k <= 0 || k > len(m.corpus) {
		k = len(m.corpus)
	}
	out := make([]domain.Passage, k)
	for i := range out {
		passage := m.corpus[i]
		passage.Metadata = cloneMetadata(passage.Metadata)
		out[i] = passage
	}
	return out, nil
}

func cloneMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
