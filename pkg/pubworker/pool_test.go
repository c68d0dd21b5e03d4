package pubworker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: RunBatch must block until every job has settled
func TestPool_RunBatchWaitsForAllJobs(t *testing.T) {
	pool := NewPool(4, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var completed int32
	jobs := make([]PublishJob, 5)
	for i := range jobs {
		jobs[i] = PublishJob{
			PostID: string(rune('a' + i)),
			Handler: func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		}
	}

	failed := pool.RunBatch(ctx, jobs)

	assert.Equal(t, 0, failed)
	assert.Equal(t, int32(5), atomic.LoadInt32(&completed), "RunBatch returned before all jobs settled")
}

// Test 2: one failing job must not abort its siblings
func TestPool_RunBatchSettleAll(t *testing.T) {
	pool := NewPool(4, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var succeeded int32
	jobs := []PublishJob{
		{PostID: "ok-1", Handler: func(ctx context.Context) error {
			atomic.AddInt32(&succeeded, 1)
			return nil
		}},
		{PostID: "bad", Handler: func(ctx context.Context) error {
			return errors.New("store unavailable")
		}},
		{PostID: "ok-2", Handler: func(ctx context.Context) error {
			atomic.AddInt32(&succeeded, 1)
			return nil
		}},
	}

	failed := pool.RunBatch(ctx, jobs)

	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&succeeded))
}

// Test 3: a panicking handler settles as an error instead of killing the worker
func TestPool_PanicContainment(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	failed := pool.RunBatch(ctx, []PublishJob{
		{PostID: "boom", Handler: func(ctx context.Context) error {
			panic("handler exploded")
		}},
	})
	require.Equal(t, 1, failed)

	// The worker must still be alive and able to process more work.
	failed = pool.RunBatch(ctx, []PublishJob{
		{PostID: "boom", Handler: func(ctx context.Context) error {
			return nil
		}},
	})
	assert.Equal(t, 0, failed)

	stats := pool.GetStats()
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.Equal(t, int64(2), stats.TotalProcessed)
}

// Test 4: dispatches of the same post id must never run concurrently
func TestPool_SamePostSequentialProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var results []int
	var mu sync.Mutex

	jobs := make([]PublishJob, 5)
	for i := range jobs {
		val := i + 1
		jobs[i] = PublishJob{
			PostID: "post-1",
			Handler: func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		}
	}

	pool.RunBatch(ctx, jobs)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "same-post jobs must process in dispatch order")
}

// Test 5: different posts spread over workers and run in parallel
func TestPool_DifferentPostsParallelProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var activeCount int32
	var maxActive int32

	jobs := make([]PublishJob, 8)
	for i := range jobs {
		jobs[i] = PublishJob{
			PostID: string(rune('A' + i)),
			Handler: func(ctx context.Context) error {
				current := atomic.AddInt32(&activeCount, 1)
				for {
					observed := atomic.LoadInt32(&maxActive)
					if current <= observed || atomic.CompareAndSwapInt32(&maxActive, observed, current) {
						break
					}
				}
				time.Sleep(30 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		}
	}

	pool.RunBatch(ctx, jobs)

	assert.Greater(t, atomic.LoadInt32(&maxActive), int32(1), "expected parallelism across distinct posts")
}

// Test 6: RunBatch with an empty slice is a cheap no-op
func TestPool_RunBatchEmpty(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	assert.Equal(t, 0, pool.RunBatch(ctx, nil))
	assert.Equal(t, int64(0), pool.GetStats().TotalDispatched)
}

// Test 7: Stop racing an in-flight RunBatch must settle every job, not panic
func TestPool_StopDuringRunBatchSettlesAllJobs(t *testing.T) {
	pool := NewPool(2, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)

	jobs := make([]PublishJob, 20)
	for i := range jobs {
		jobs[i] = PublishJob{
			PostID: string(rune('a' + i)),
			Handler: func(ctx context.Context) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			},
		}
	}

	done := make(chan int, 1)
	go func() {
		done <- pool.RunBatch(ctx, jobs)
	}()

	time.Sleep(10 * time.Millisecond)
	pool.Stop()

	select {
	case <-done:
		// Every job settled: processed before the queues closed, or failed
		// because the pool went away. Either way RunBatch must return.
	case <-time.After(2 * time.Second):
		t.Fatal("RunBatch never returned after Stop; a job was left unsettled")
	}
}
