package harvest

import (
	"context"

	"go.uber.org/zap"
)

// CombStats reports how a comb run ended.
type CombStats struct {
	Iterations int
	Remaining  int
}

// comb re-fetches the retryable subset of records until none remain, an
// iteration fails to shrink the subset, or maxIterations is reached. Other
// records are never touched and results merge back by position.
func comb[T any](
	ctx context.Context,
	log *zap.Logger,
	records []T,
	maxIterations int,
	retryable func(T) bool,
	refetch func(context.Context, []T) ([]T, error),
) ([]T, CombStats, error) {
	out := make([]T, len(records))
	copy(out, records)

	var stats CombStats
	prev := -1
	for {
		var idx []int
		for i, r := range out {
			if retryable(r) {
				idx = append(idx, i)
			}
		}
		stats.Remaining = len(idx)

		switch {
		case len(idx) == 0:
			log.Info("comb converged", zap.Int("iterations", stats.Iterations))
			return out, stats, nil
		case prev >= 0 && len(idx) >= prev:
			log.Warn("comb made no progress", zap.Int("iterations", stats.Iterations), zap.Int("remaining", len(idx)))
			return out, stats, nil
		case maxIterations > 0 && stats.Iterations >= maxIterations:
			log.Warn("comb hit iteration cap", zap.Int("iterations", stats.Iterations), zap.Int("remaining", len(idx)))
			return out, stats, nil
		}

		subset := make([]T, len(idx))
		for j, i := range idx {
			subset[j] = out[i]
		}

		stats.Iterations++
		log.Info("combing", zap.Int("iteration", stats.Iterations), zap.Int("retryable", len(idx)))

		fetched, err := refetch(ctx, subset)
		if err != nil {
			return nil, stats, err
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		for j, i := range idx {
			out[i] = fetched[j]
		}
		prev = len(idx)
	}
}
