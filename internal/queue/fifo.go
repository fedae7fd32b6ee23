// Package queue provides the thread-safe FIFO backing each feeder entity kind.
package queue

import "sync"

// FIFO is an unbounded, mutex-guarded first-in first-out queue.
//
// Producers (plan builds and feed calls) and the single drain consumer run on
// different goroutines. Every method is safe for concurrent use.
//
// Availability is signalled on a buffered channel of size 1, so a waiter can
// select on Wait alongside a timer or context. The signal is consumed when a
// pop empties the queue.
type FIFO[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
}

// New creates an empty FIFO.
func New[T any]() *FIFO[T] {
	return &FIFO[T]{
		items:  make([]T, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// Push appends v. Returns false if the queue is closed.
func (q *FIFO[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	q.notify()
	return true
}

// PushAll appends vs in order under one lock acquisition.
func (q *FIFO[T]) PushAll(vs []T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, vs...)
	if len(vs) > 0 {
		q.notify()
	}
	return true
}

// notify must be called with mu held.
func (q *FIFO[T]) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Peek returns the front item without removing it.
func (q *FIFO[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// TryPop removes and returns the front item without blocking.
func (q *FIFO[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pop()
}

// PopIf removes the front item only if keep reports true for it. The check
// and removal happen under one lock so a concurrent producer cannot slip in
// between them.
func (q *FIFO[T]) PopIf(keep func(T) bool) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || !keep(q.items[0]) {
		var zero T
		return zero, false
	}
	return q.pop()
}

func (q *FIFO[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]
	// Clear the slot so the backing array does not pin the payload.
	q.items[0] = zero

	if len(q.items) == 1 {
		q.items = q.items[:0]
		q.consume()
	} else {
		q.items = q.items[1:]
	}
	return v, true
}

// Drain removes and returns every queued item.
func (q *FIFO[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	clear(q.items)
	q.items = q.items[:0]
	q.consume()
	return out
}

// consume discards a pending signal. Must be called with mu held.
func (q *FIFO[T]) consume() {
	if q.closed {
		return
	}
	select {
	case <-q.signal:
	default:
	}
}

// Wait returns a channel that receives when items may be available. Once
// the queue is closed it returns nil, which blocks forever in a select.
func (q *FIFO[T]) Wait() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	return q.signal
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further pushes and wakes callers already selecting on Wait.
// Queued items remain poppable.
func (q *FIFO[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
