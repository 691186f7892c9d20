package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

type scoredPassage struct {
	passage domain.Passage
	score   float64
}

// rerankByEmbedding reorders passages by cosine similarity between the query
// embedding and each passage embedding, then truncates to topK. Passage
// vectors come from a single batched call.
func (p *RetrievalPipeline) rerankByEmbedding(
	ctx context.Context,
	query string,
	passages []domain.Passage,
	topK int,
) ([]domain.Passage, error) {
	if len(passages) == 0 {
		return passages, nil
	}

	queryVector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed rerank query: %w", err)
	}

	texts := make([]string, len(passages))
	for i, passage := range passages {
		texts[i] = passage.Text
	}
	passageVectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed rerank passages: %w", err)
	}
	if len(passageVectors) != len(passages) {
		return nil, fmt.Errorf("embedding count mismatch: %d vectors for %d passages", len(passageVectors), len(passages))
	}

	normalizedQuery := l2Normalize(queryVector)
	scored := make([]scoredPassage, len(passages))
	for i, passage := range passages {
		scored[i] = scoredPassage{
			passage: passage,
			score:   dotProduct(normalizedQuery, l2Normalize(passageVectors[i])),
		}
	}

	out := takeTop(scored, topK)
	for i := range out {
		out[i].RerankScore = roundScore(out[i].RerankScore)
		out[i].RerankMethod = domain.RerankEmbedding
	}
	return out, nil
}

// rerankByCrossEncoder scores (query, passage) pairs in batches. Any failure
// constructing or invoking the scorer silently degrades to embedding rerank
// with the same arguments.
func (p *RetrievalPipeline) rerankByCrossEncoder(
	ctx context.Context,
	query string,
	passages []domain.Passage,
	topK int,
) ([]domain.Passage, error) {
	if len(passages) == 0 {
		return passages, nil
	}

	scorer, err := p.crossEncoders.Scorer(ctx)
	if err != nil {
		return p.fallbackToEmbedding(ctx, query, passages, topK, err)
	}

	batchSize := p.rerankBatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	scores := make([]float64, 0, len(passages))
	for start := 0; start < len(passages); start += batchSize {
		end := min(start+batchSize, len(passages))
		texts := make([]string, 0, end-start)
		for _, passage := range passages[start:end] {
			texts = append(texts, passage.Text)
		}

		batchScores, err := scorer.ScorePairs(ctx, query, texts)
		if err != nil {
			return p.fallbackToEmbedding(ctx, query, passages, topK, err)
		}
		if len(batchScores) != len(texts) {
			return p.fallbackToEmbedding(ctx, query, passages, topK,
				fmt.Errorf("cross-encoder returned %d scores for %d pairs", len(batchScores), len(texts)))
		}
		scores = append(scores, batchScores...)
	}

	scored := make([]scoredPassage, len(passages))
	for i, passage := range passages {
		scored[i] = scoredPassage{passage: passage, score: scores[i]}
	}

	out := takeTop(scored, topK)
	for i := range out {
		out[i].RerankMethod = domain.RerankCrossEncoder
	}
	return out, nil
}

func (p *RetrievalPipeline) fallbackToEmbedding(
	ctx context.Context,
	query string,
	passages []domain.Passage,
	topK int,
	cause error,
) ([]domain.Passage, error) {
	slog.Warn("cross_encoder_fallback", "error", cause)
	p.metrics.IncRerankFallback()
	return p.rerankByEmbedding(ctx, query, passages, topK)
}

// takeTop sorts by score descending (stable, so collection order breaks
// ties), truncates to topK and writes the score onto each survivor.
func takeTop(scored []scoredPassage, topK int) []domain.Passage {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if topK <= 0 || topK > len(scored) {
		topK = len(scored)
	}

	out := make([]domain.Passage, 0, topK)
	for _, s := range scored[:topK] {
		passage := s.passage
		score := s.score
		passage.RerankScore = &score
		out = append(out, passage)
	}
	return out
}

func l2Normalize(v []float32) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = float64(x)
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return out
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}

func dotProduct(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Embedding rerank scores are rounded to six decimals before exposure.
func roundScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	rounded := math.Round(*score*1e6) / 1e6
	return &rounded
}
