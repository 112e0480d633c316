package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotRunning is returned when submitting to a queue that is not started.
	ErrNotRunning = errors.New("queue not running")
	// ErrFull is returned when the buffer is saturated.
	ErrFull = errors.New("queue full")
)

// Task wraps a payload travelling through a Queue.
type Task[T any] struct {
	ID      string
	Payload T
	Attempt int
}

// Handler processes one task. Returning an error schedules a retry.
type Handler[T any] func(ctx context.Context, task Task[T]) error

// Options tunes a Queue.
type Options[T any] struct {
	Workers    int
	Buffer     int
	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	// OnGiveUp is called once a task has exhausted its retries.
	OnGiveUp func(task Task[T], err error)
	Logger   *zap.Logger
}

// Stats reports queue counters.
type Stats struct {
	Processed uint64
	Retried   uint64
	Abandoned uint64
}

// Queue is an in-process worker pool with bounded retries.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	opts    Options[T]

	tasks  chan Task[T]
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed atomic.Uint64
	retried   atomic.Uint64
	abandoned atomic.Uint64
}

// New builds a queue named name that feeds tasks to handler.
func New[T any](name string, handler Handler[T], opts Options[T]) *Queue[T] {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 8
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Queue[T]{
		name:    name,
		handler: handler,
		opts:    opts,
		tasks:   make(chan Task[T], opts.Buffer),
	}
}

// Start launches the workers. Calling Start twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.run()
	}
	q.opts.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.opts.Workers))
}

// Stop cancels the workers and waits for in-flight handlers to return.
func (q *Queue[T]) Stop() {
	q.mu.RLock()
	cancel := q.cancel
	q.mu.RUnlock()
	if cancel == nil {
		return
	}
	cancel()
	q.wg.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Submit enqueues a task without blocking.
func (q *Queue[T]) Submit(task Task[T]) error {
	q.mu.RLock()
	ctx := q.ctx
	q.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		return ErrNotRunning
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return ErrFull
	}
}

// Stats returns a snapshot of the queue counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		Processed: q.processed.Load(),
		Retried:   q.retried.Load(),
		Abandoned: q.abandoned.Load(),
	}
}

func (q *Queue[T]) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case task := <-q.tasks:
			q.process(task)
		}
	}
}

func (q *Queue[T]) process(task Task[T]) {
	for {
		err := q.handler(q.ctx, task)
		if err == nil {
			q.processed.Add(1)
			return
		}
		if task.Attempt >= q.opts.MaxRetries || q.ctx.Err() != nil {
			q.abandoned.Add(1)
			q.opts.Logger.Error("task abandoned",
				zap.String("queue", q.name),
				zap.String("task_id", task.ID),
				zap.Int("attempt", task.Attempt),
				zap.Error(err),
			)
			if q.opts.OnGiveUp != nil {
				q.opts.OnGiveUp(task, err)
			}
			return
		}

		task.Attempt++
		q.retried.Add(1)
		q.opts.Logger.Warn("task failed, retrying",
			zap.String("queue", q.name),
			zap.String("task_id", task.ID),
			zap.Int("attempt", task.Attempt),
			zap.Error(err),
		)

		timer := time.NewTimer(q.opts.Backoff * time.Duration(task.Attempt))
		select {
		case <-q.ctx.Done():
			timer.Stop()
			q.abandoned.Add(1)
			if q.opts.OnGiveUp != nil {
				q.opts.OnGiveUp(task, q.ctx.Err())
			}
			return
		case <-timer.C:
		}
	}
}
