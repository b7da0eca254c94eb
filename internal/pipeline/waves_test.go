package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunWavesPositionalResults(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	got := RunWaves(context.Background(), items, 3, func(_ context.Context, n int) int {
		return n * 10
	})
	if len(got) != len(items) {
		t.Fatalf("len(results) = %d, want %d", len(got), len(items))
	}
	for i, n := range items {
		if got[i] != n*10 {
			t.Errorf("results[%d] = %d, want %d", i, got[i], n*10)
		}
	}
}

func TestRunWavesBoundsConcurrency(t *testing.T) {
	const waveSize = 3
	var active, peak int64
	items := make([]int, 10)

	RunWaves(context.Background(), items, waveSize, func(_ context.Context, _ int) struct{} {
		n := atomic.AddInt64(&active, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return struct{}{}
	})

	if peak > waveSize {
		t.Errorf("peak concurrency = %d, want at most %d", peak, waveSize)
	}
	if peak < 2 {
		t.Errorf("peak concurrency = %d, waves never ran members concurrently", peak)
	}
}

func TestRunWavesSequentialWhenSizeOne(t *testing.T) {
	var mu sync.Mutex
	var order []int

	RunWaves(context.Background(), []int{0, 1, 2, 3}, 1, func(_ context.Context, n int) struct{} {
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
		return struct{}{}
	})

	for i, n := range order {
		if n != i {
			t.Fatalf("order = %v, want strictly sequential", order)
		}
	}
	if len(order) != 4 {
		t.Fatalf("ran %d items, want 4", len(order))
	}
}

func TestRunWavesWaveBarrier(t *testing.T) {
	// Members of wave two must not start until every member of wave one has
	// finished.
	var firstWaveDone int64
	items := []int{0, 1, 2, 3}

	RunWaves(context.Background(), items, 2, func(_ context.Context, n int) struct{} {
		if n < 2 {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&firstWaveDone, 1)
			return struct{}{}
		}
		if atomic.LoadInt64(&firstWaveDone) != 2 {
			t.Errorf("item %d started before wave one completed", n)
		}
		return struct{}{}
	})
}

func TestRunWavesEmptyAndDegenerate(t *testing.T) {
	if got := RunWaves(context.Background(), nil, 5, func(_ context.Context, n int) int { return n }); len(got) != 0 {
		t.Errorf("empty input produced %d results", len(got))
	}
	// A non-positive wave size falls back to sequential processing.
	got := RunWaves(context.Background(), []int{1, 2}, 0, func(_ context.Context, n int) int { return n })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("results = %v", got)
	}
}
