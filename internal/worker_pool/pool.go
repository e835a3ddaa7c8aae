package worker_pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Task represents a unit of work to execute
type Task func(ctx context.Context) (interface{}, error)

// Result represents the result of a task execution
type Result struct {
	Value    interface{}
	Error    error
	Duration time.Duration
}

// WorkerPool executes tasks concurrently with semaphore-based limiting
type WorkerPool struct {
	maxWorkers  int
	semaphore   chan struct{}
	taskTimeout time.Duration
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
	}
}

// WithTaskTimeout bounds every task by d. Zero disables the bound.
func (wp *WorkerPool) WithTaskTimeout(d time.Duration) *WorkerPool {
	wp.taskTimeout = d
	return wp
}

// Run executes all tasks concurrently and returns results in task order.
// Every task yields exactly one Result: a task that never starts because ctx
// ended, times out, or panics gets an error Result.
func (wp *WorkerPool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return []Result{}
	}

	results := make([]Result, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t Task) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				results[index] = Result{Error: err}
				return
			}

			// Acquire semaphore (blocks if max workers already running)
			select {
			case wp.semaphore <- struct{}{}:
				defer func() { <-wp.semaphore }()
			case <-ctx.Done():
				results[index] = Result{Error: ctx.Err()}
				return
			}

			results[index] = wp.execute(ctx, t)
		}(i, task)
	}

	wg.Wait()
	return results
}

func (wp *WorkerPool) execute(ctx context.Context, t Task) (res Result) {
	start := time.Now()
	taskCtx := ctx
	if wp.taskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, wp.taskTimeout)
		defer cancel()
	}

	defer func() { res.Duration = time.Since(start) }()

	if err := taskCtx.Err(); err != nil {
		return Result{Error: err}
	}

	type outcome struct {
		value interface{}
		err   error
	}
	done := make(chan outcome, 1)
	panics := make(chan interface{}, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panics <- r
			}
		}()
		v, err := t(taskCtx)
		done <- outcome{v, err}
	}()

	// A task that ignores its context is abandoned, not waited on
	select {
	case o := <-done:
		return Result{Value: o.value, Error: o.err}
	case r := <-panics:
		return Result{Error: fmt.Errorf("task panicked: %v", r)}
	case <-taskCtx.Done():
		return Result{Error: taskCtx.Err()}
	}
}

// GetMaxWorkers returns the maximum number of workers
func (wp *WorkerPool) GetMaxWorkers() int {
	return wp.maxWorkers
}
