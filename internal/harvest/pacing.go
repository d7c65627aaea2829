package harvest

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pacer pauses dispatch after every Every records while more remain.
// Requests already in flight keep running during the pause.
type Pacer struct {
	Every int
	Pause time.Duration
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// After is called once dispatched records have been started out of total.
func (p Pacer) After(ctx context.Context, dispatched, total int) error {
	if p.Every <= 0 || p.Pause <= 0 {
		return nil
	}
	if dispatched%p.Every != 0 || dispatched >= total {
		return nil
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, p.Pause)
	}
	return sleep(ctx, p.Pause)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// fanOut runs fetch for every record concurrently and returns the results
// in input order. fetch absorbs its own failures, so one record never
// cancels another.
func fanOut[T any](
	ctx context.Context,
	log *zap.Logger,
	pacer Pacer,
	concurrency int,
	records []T,
	name func(T) string,
	fetch func(context.Context, T) T,
) ([]T, error) {
	out := make([]T, len(records))
	total := len(records)

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	var pauseErr error
	for i, rec := range records {
		log.Info("fetching detail",
			zap.Int("index", i),
			zap.Int("total", total),
			zap.String("name", name(rec)),
		)
		g.Go(func() error {
			out[i] = fetch(gctx, rec)
			return nil
		})
		if pauseErr = pacer.After(ctx, i+1, total); pauseErr != nil {
			break
		}
	}

	_ = g.Wait()
	if pauseErr != nil {
		return nil, pauseErr
	}
	// Requests cut off by cancellation look retryable; the batch is
	// discarded rather than saved with them.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
