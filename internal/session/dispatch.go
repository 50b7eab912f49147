package session

import "sync"

// Dispatcher runs a state mutation on whatever goroutine owns the state.
type Dispatcher func(func())

// Immediate runs the mutation on the calling goroutine. The Store's lock is
// enough when every reader goes through Snapshot.
func Immediate(fn func()) { fn() }

// Queue holds mutations until the owner drains them. The window drains it
// once per tick, so fetch completions land between frames.
type Queue struct {
	mu      sync.Mutex
	pending []func()
}

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Dispatch(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Drain runs every queued mutation in arrival order and reports how many ran.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
