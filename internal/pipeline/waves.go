package pipeline

import (
	"context"
	"sync"
)

// RunWaves processes items in fixed-size waves: each chunk of waveSize items
// runs concurrently and is awaited in full before the next chunk starts, in
// input order. The result slice is positionally aligned with items. fn must
// absorb its own failures into R; a member's failure never cancels siblings.
// waveSize 1 degenerates to a sequential loop.
func RunWaves[T, R any](ctx context.Context, items []T, waveSize int, fn func(ctx context.Context, item T) R) []R {
	if waveSize < 1 {
		waveSize = 1
	}
	results := make([]R, len(items))
	for start := 0; start < len(items); start += waveSize {
		end := start + waveSize
		if end > len(items) {
			end = len(items)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = fn(ctx, items[i])
			}(i)
		}
		wg.Wait()
	}
	return results
}
