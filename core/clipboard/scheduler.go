package clipboard

import "sync"

// Scheduler defers work to the end of the current task. Paste applies its
// result through it so the host's own paste side effects settle first.
type Scheduler interface {
	Defer(fn func())
}

// TaskQueue is a Scheduler that runs deferred work when Flush is called,
// typically once per host event-loop turn.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func (q *TaskQueue) Defer(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, fn)
}

// Flush runs queued tasks in order. Tasks deferred while flushing run in
// the next Flush.
func (q *TaskQueue) Flush() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Pending reports the number of queued tasks.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Immediate runs deferred work at once.
type Immediate struct{}

func (Immediate) Defer(fn func()) { fn() }
