package support

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

const closeConcurrency = 4

// MessageCloser closes a support message on the backend.
type MessageCloser interface {
	CloseMessage(ctx context.Context, id int64) error
}

// CloseAll closes every id, a few at a time, and returns the ids that
// failed along with the first error.
func CloseAll(ctx context.Context, closer MessageCloser, ids []int64) ([]int64, error) {
	if closer == nil || len(ids) == 0 {
		return nil, nil
	}
	var (
		mu       sync.Mutex
		failed   []int64
		firstErr error
	)
	var g errgroup.Group
	g.SetLimit(closeConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := closer.CloseMessage(ctx, id); err != nil {
				mu.Lock()
				failed = append(failed, id)
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed, firstErr
}
