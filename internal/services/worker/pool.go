// Package worker runs CPU-bound tasks on a fixed set of goroutines so image
// codec work never competes with request handling for an unbounded number of
// threads.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	ErrSaturated = errors.New("worker pool saturated")
	ErrStopped   = errors.New("worker pool stopped")
	ErrPanicked  = errors.New("worker task panicked")
)

type Task func()

type Pool struct {
	size   int
	tasks  chan Task
	logger *zap.Logger

	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool

	running atomic.Int64
}

// NewPool creates a pool of size workers. queueSize tasks may wait for a free
// worker; beyond that Submit fails with ErrSaturated.
func NewPool(size, queueSize int, logger *zap.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		size:   size,
		tasks:  make(chan Task, queueSize),
		logger: logger,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
}

func (p *Pool) work(workerID int) {
	defer p.wg.Done()
	p.logger.Debug("Worker started", zap.Int("worker_id", workerID))

	for task := range p.tasks {
		p.execute(workerID, task)
	}

	p.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
}

func (p *Pool) execute(workerID int, task Task) {
	p.running.Add(1)
	defer p.running.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Task panicked", zap.Int("worker_id", workerID), zap.Any("panic", r))
		}
	}()
	task()
}

// Submit queues task without blocking.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrSaturated
	}
}

// Stop rejects new tasks and waits for queued ones to finish, or for ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for workers to finish: %w", ctx.Err())
	}
}

func (p *Pool) Stats() map[string]interface{} {
	return map[string]interface{}{
		"workers":  p.size,
		"running":  p.running.Load(),
		"queued":   len(p.tasks),
		"capacity": cap(p.tasks),
	}
}

type result[T any] struct {
	value T
	err   error
}

// Run executes fn on the pool and waits for its result on a one-shot
// channel. When ctx ends first the task still completes and its result is
// discarded.
func Run[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	done := make(chan result[T], 1)

	err := p.Submit(func() {
		var r result[T]
		defer func() {
			if rec := recover(); rec != nil {
				r = result[T]{err: fmt.Errorf("%w: %v", ErrPanicked, rec)}
			}
			done <- r
		}()
		r.value, r.err = fn()
	})
	if err != nil {
		return zero, err
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
