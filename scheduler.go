package hxview

import "sync"

// TaskQueue is a Scheduler holding tasks until Drain runs them.
//
// The Driver owns one and drains it after each render pass, which is the
// "next turn" deferred widget work waits for.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

// Defer implements Scheduler.
func (q *TaskQueue) Defer(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs the queued tasks in order. Tasks deferred while draining run in
// the same call.
func (q *TaskQueue) Drain() {
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		q.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, task := range tasks {
			task()
		}
	}
}
