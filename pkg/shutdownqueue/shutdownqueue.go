// Package shutdownqueue collects named cleanup tasks (HTTP server, DB pool,
// log flush) and drains them in reverse registration order.
//
// A process-wide queue is available through Add and Shutdown; components that
// need isolation (tests, sub-servers) can build their own with New.
//
//	defer func() {
//		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//		defer cancel()
//		_ = shutdownqueue.Shutdown(ctx)
//	}()
//
// Tasks run once. Panics are recovered and reported as errors.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

// Queue is a LIFO list of cleanup tasks. The zero value is ready to use.
type Queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{tasks: make([]namedTask, 0, 8)}
}

var defaultQueue = New()

// Add registers t on the process-wide queue.
func Add(name string, t Task) {
	defaultQueue.Add(name, t)
}

// Shutdown drains the process-wide queue.
func Shutdown(ctx context.Context) error {
	return defaultQueue.Shutdown(ctx)
}

// Add registers a task to be run on Shutdown. Nil tasks and tasks added
// after Shutdown started are ignored.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		slog.Warn("shutdown task registered after shutdown", "task", name)

		return
	}

	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Len reports the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown runs all registered tasks in LIFO order. Subsequent calls are
// no-ops.
//
// If ctx is done mid-drain, the remaining tasks are skipped and the context
// error is joined with any task errors collected so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return nil
	}

	q.closed = true
	tasks := q.tasks
	q.tasks = nil

	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		err := ctx.Err()
		if err != nil {
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, err))

			return errors.Join(errs...)
		}

		err = runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", t.name, r)
		}
	}()

	slog.Debug("running shutdown task", "task", t.name)

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("shutdown task %q: %w", t.name, err)
	}

	return nil
}
