package worker

import (
	"context"
	"sync"
)

// Job is a unit of work producing a result of type R
type Job[R any] interface {
	Execute(ctx context.Context) R
}

// JobFunc adapts a function to the Job interface
type JobFunc[R any] func(ctx context.Context) R

// Execute calls f
func (f JobFunc[R]) Execute(ctx context.Context) R {
	return f(ctx)
}

// Pool runs jobs on a fixed number of goroutines. Results are collected as
// they arrive, so Submit never deadlocks on an unread result channel.
type Pool[R any] struct {
	workers    int
	jobQueue   chan Job[R]
	results    chan R
	collected  []R
	wg         sync.WaitGroup
	collectWG  sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	waitOnce   sync.Once
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool[R any](parent context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool[R]{
		workers:    workers,
		jobQueue:   make(chan Job[R], workers*2),
		results:    make(chan R, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool[R]) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit queues a job; it returns false if the pool was cancelled first
func (p *Pool[R]) Submit(job Job[R]) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for running jobs and returns all results in
// completion order
func (p *Pool[R]) Wait() []R {
	p.waitOnce.Do(func() {
		close(p.jobQueue)
		p.wg.Wait()
		p.closeResults()
		p.collectWG.Wait()
		p.cancelFunc()
	})
	return p.collected
}

// Shutdown cancels outstanding jobs and waits for workers to exit
func (p *Pool[R]) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool[R]) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Run executes fn over items with at most workers goroutines and returns the
// results in input order
func Run[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, item T) R) []R {
	type indexed struct {
		idx int
		val R
	}

	out := make([]R, len(items))
	if len(items) == 0 {
		return out
	}

	pool := NewPool[indexed](ctx, workers)
	pool.Start()

	for i, item := range items {
		i, item := i, item
		pool.Submit(JobFunc[indexed](func(ctx context.Context) indexed {
			return indexed{idx: i, val: fn(ctx, item)}
		}))
	}

	for _, r := range pool.Wait() {
		out[r.idx] = r.val
	}
	return out
}
