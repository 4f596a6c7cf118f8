package langprompt

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome of a best-effort fan-out, keyed by the ref
// string of each requested item. Items and Failed partition the input: every
// ref lands in exactly one of the two maps.
type BatchResult[T any] struct {
	Items  map[string]T
	Failed map[string]error
}

// runBatch fans get out over refs with at most limit in-flight calls.
// Failures are recorded per item and never cancel sibling items.
func runBatch[T any](ctx context.Context, limit int, refs []Ref, get func(ctx context.Context, ref Ref) (T, error)) *BatchResult[T] {
	res := &BatchResult[T]{
		Items:  make(map[string]T, len(refs)),
		Failed: make(map[string]error),
	}
	var mu sync.Mutex
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, ref := range refs {
		g.Go(func() error {
			v, err := get(ctx, ref)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[ref.String()] = err
			} else {
				res.Items[ref.String()] = v
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}
