package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesTasks(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	done := make(chan struct{}, 3)

	q := New("test", func(ctx context.Context, task Task[int]) error {
		mu.Lock()
		seen[task.ID] = task.Payload
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Options[int]{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Submit(Task[int]{ID: id, Payload: i}))
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tasks")
		}
	}

	mu.Lock()
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, seen)
	mu.Unlock()
	require.Eventually(t, func() bool { return q.Stats().Processed == 3 }, time.Second, 10*time.Millisecond)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	gaveUp := make(chan Task[string], 1)
	var attempts int
	var mu sync.Mutex

	q := New("retry", func(ctx context.Context, task Task[string]) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("boom")
	}, Options[string]{
		MaxRetries: 2,
		Backoff:    time.Millisecond,
		OnGiveUp:   func(task Task[string], err error) { gaveUp <- task },
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit(Task[string]{ID: "x"}))

	select {
	case task := <-gaveUp:
		assert.Equal(t, 2, task.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("task was never abandoned")
	}
	mu.Lock()
	assert.Equal(t, 3, attempts)
	mu.Unlock()

	stats := q.Stats()
	assert.Equal(t, uint64(2), stats.Retried)
	assert.Equal(t, uint64(1), stats.Abandoned)
}

func TestQueueSubmitBeforeStart(t *testing.T) {
	q := New("idle", func(ctx context.Context, task Task[int]) error { return nil }, Options[int]{})
	assert.ErrorIs(t, q.Submit(Task[int]{ID: "a"}), ErrNotRunning)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Submit(Task[int]{ID: "b"}), ErrNotRunning)
}
