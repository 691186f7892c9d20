package usecase

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dsuniblu/internal-docs-assistant/internal/core/domain"
)

// retrieveWithVariants fans out one index query per variant and collects the
// union. Variants run concurrently, but the collected order is deterministic:
// variant index first, in-variant rank second, duplicates (by trimmed text)
// keep only their first-seen instance.
//
// A failed variant contributes zero passages; it never aborts the others.
func (p *RetrievalPipeline) retrieveWithVariants(
	ctx context.Context,
	variants []string,
	k int,
	namespace string,
) []domain.Passage {
	perVariant := make([][]domain.Passage, len(variants))

	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range variants {
		i, variant := i, variant
		g.Go(func() error {
			callCtx := gctx
			if p.queryTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, p.queryTimeout)
				defer cancel()
			}

			passages, err := p.index.Query(callCtx, variant, k, namespace)
			if err != nil {
				slog.Warn("variant_retrieval_failed",
					"variant_index", i,
					"namespace", namespace,
					"error", err,
				)
				return nil
			}
			perVariant[i] = passages
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	collected := make([]domain.Passage, 0, len(variants)*k)
	for _, passages := range perVariant {
		for _, passage := range passages {
			key := passage.DedupKey()
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			collected = append(collected, passage)
		}
	}

	slog.Debug("variant_retrieval_collected",
		"variants", len(variants),
		"collected", len(collected),
	)
	return collected
}
