package camstream

import (
	"context"
	"sync"
	"sync/atomic"
)

// queueKey tags contexts handed to tasks with the task's token.
type queueKey struct{}

// taskToken identifies one running task of a queue.
type taskToken struct {
	q *WorkQueue
}

// WorkQueue runs GPU work serially on a single goroutine.
//
// GPU devices are not safe for concurrent command submission, so every
// operation that touches GPU state for a GPUContext is funneled through one
// WorkQueue. Enqueueing never blocks: tasks are appended to an unbounded
// list and the worker is woken with a condition variable.
//
// Thread-safety: All methods are safe for concurrent use.
type WorkQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func(context.Context)
	closed bool

	// current is the token of the task being run, nil between tasks.
	current atomic.Pointer[taskToken]

	done chan struct{}
}

// NewWorkQueue starts a queue worker. Close stops it.
func NewWorkQueue() *WorkQueue {
	q := &WorkQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Async enqueues fn and returns immediately.
func (q *WorkQueue) Async(fn func(ctx context.Context)) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.tasks = append(q.tasks, fn)
	q.cond.Signal()
	return nil
}

// Sync runs fn on the queue and waits for it to finish.
//
// When ctx belongs to the task currently running on this queue, fn runs
// inline. A context kept past the end of its task no longer counts and fn
// is queued like any other. If ctx is cancelled while waiting, Sync
// returns ctx.Err(); fn still runs later.
func (q *WorkQueue) Sync(ctx context.Context, fn func(ctx context.Context)) error {
	if q.IsCurrent(ctx) {
		fn(ctx)
		return nil
	}

	finished := make(chan struct{})
	err := q.Async(func(ctx context.Context) {
		defer close(finished)
		fn(ctx)
	})
	if err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsCurrent reports whether ctx belongs to the task running on q right now.
//
// The context handed to a task is only valid on the task's own goroutine
// and only until the task returns.
func (q *WorkQueue) IsCurrent(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	tok, _ := ctx.Value(queueKey{}).(*taskToken)
	return tok != nil && tok.q == q && q.current.Load() == tok
}

// Close stops accepting work, runs the tasks already queued and waits for
// the worker to exit. Close must not be called from a task.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.done
}

// Len returns the number of tasks waiting to run.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *WorkQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		tok := &taskToken{q: q}
		q.current.Store(tok)
		fn(context.WithValue(context.Background(), queueKey{}, tok))
		q.current.Store(nil)
	}
}
