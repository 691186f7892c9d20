package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
	"github.com/dsuniblu/internal-docs-assistant/internal/core/ports"
)

// RetrievalMetrics receives pipeline-level observations. Implementations must
// be safe for concurrent use.
type RetrievalMetrics interface {
	ObserveSearch(method domain.RerankMethod, collected, returned int, duration time.Duration)
	IncRerankFallback()
}

type noopRetrievalMetrics struct{}

func (noopRetrievalMetrics) ObserveSearch(domain.RerankMethod, int, int, time.Duration) {}
func (noopRetrievalMetrics) IncRerankFallback()                                         {}

// RetrievalPipeline orchestrates query expansion, union multi-query
// retrieval, reranking and truncation against a vector index.
type RetrievalPipeline struct {
	index         ports.VectorIndex
	embedder      ports.Embedder
	crossEncoders ports.CrossEncoderProvider
	expander      *QueryExpander
	metrics       RetrievalMetrics

	defaults        domain.RetrievalDefaults
	variantCount    int
	rerankBatchSize int
	// passages scoring below this threshold are dropped before reranking;
	// zero disables the filter.
	relevanceThreshold float64
	queryTimeout       time.Duration
}

type RetrievalPipelineConfig struct {
	Defaults           domain.RetrievalDefaults
	VariantCount       int
	RerankBatchSize    int
	RelevanceThreshold float64
	QueryTimeout       time.Duration
	Metrics            RetrievalMetrics
}

func NewRetrievalPipeline(
	index ports.VectorIndex,
	embedder ports.Embedder,
	crossEncoders ports.CrossEncoderProvider,
	expander *QueryExpander,
	cfg RetrievalPipelineConfig,
) *RetrievalPipeline {
	if cfg.VariantCount <= 0 {
		cfg.VariantCount = 3
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopRetrievalMetrics{}
	}
	return &RetrievalPipeline{
		index:              index,
		embedder:           embedder,
		crossEncoders:      crossEncoders,
		expander:           expander,
		metrics:            cfg.Metrics,
		defaults:           cfg.Defaults,
		variantCount:       cfg.VariantCount,
		rerankBatchSize:    cfg.RerankBatchSize,
		relevanceThreshold: cfg.RelevanceThreshold,
		queryTimeout:       cfg.QueryTimeout,
	}
}

// Search runs the full pipeline. It never fails: backend errors degrade to an
// empty result set, which callers read as "no relevant documents found".
func (p *RetrievalPipeline) Search(ctx context.Context, req domain.RetrievalRequest) []domain.RankedResult {
	start := time.Now()
	req = req.Normalize(p.defaults)

	variants := p.expander.Expand(ctx, req.Query, p.variantCount)
	collected := p.retrieveWithVariants(ctx, variants, req.K, req.Namespace)
	if p.relevanceThreshold > 0 {
		collected = filterByScore(collected, p.relevanceThreshold)
	}
	if len(collected) == 0 {
		slog.Info("search_no_passages", "namespace", req.Namespace)
		p.metrics.ObserveSearch(req.RerankMethod, 0, 0, time.Since(start))
		return nil
	}

	// The verbatim original query scores the rerank, not a variant blend.
	scoringQuery := variants[0]

	var (
		final []domain.Passage
		err   error
	)
	switch req.RerankMethod {
	case domain.RerankEmbedding:
		final, err = p.rerankByEmbedding(ctx, scoringQuery, collected, req.RerankTopK)
	case domain.RerankCrossEncoder:
		final, err = p.rerankByCrossEncoder(ctx, scoringQuery, collected, req.RerankTopK)
	default:
		final = headOf(collected, req.RerankTopK)
	}
	if err != nil {
		slog.Error("search_rerank_failed", "method", req.RerankMethod, "error", err)
		p.metrics.ObserveSearch(req.RerankMethod, len(collected), 0, time.Since(start))
		return nil
	}

	ranked := make([]domain.RankedResult, len(final))
	for i, passage := range final {
		ranked[i] = domain.RankedResult{Passage: passage, Rank: i + 1}
	}

	p.metrics.ObserveSearch(req.RerankMethod, len(collected), len(ranked), time.Since(start))
	return ranked
}

func headOf(passages []domain.Passage, limit int) []domain.Passage {
	if limit <= 0 || limit > len(passages) {
		limit = len(passages)
	}
	out := make([]domain.Passage, limit)
	copy(out, passages[:limit])
	for i := range out {
		out[i].RerankMethod = domain.RerankNone
	}
	return out
}

func filterByScore(passages []domain.Passage, threshold float64) []domain.Passage {
	out := make([]domain.Passage, 0, len(passages))
	for _, passage := range passages {
		if passage.Score >= threshold {
			out = append(out, passage)
		}
	}
	return out
}
