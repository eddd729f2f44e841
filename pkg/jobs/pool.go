package jobs

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task processes the item at index i.
type Task func(ctx context.Context, i int) error

// PoolConfig configures worker pool behaviour.
type PoolConfig struct {
	Workers int
	Logger  *zap.Logger
}

// Pool fans a bounded batch of independent tasks out over a fixed number of goroutines.
// Tasks are never retried and a failing or panicking task does not affect its siblings.
type Pool struct {
	name    string
	workers int
	logger  *zap.Logger
}

// NewPool builds a pool with the provided configuration.
func NewPool(name string, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pool{name: name, workers: cfg.Workers, logger: cfg.Logger}
}

// Workers reports the configured concurrency.
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes task for every index in [0, n) and returns the per-index errors.
// The returned slice always has length n; a nil entry means the task succeeded.
func (p *Pool) Run(ctx context.Context, n int, task Task) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}
	workers := p.workers
	if workers > n {
		workers = n
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range indexes {
				errs[i] = p.runOne(ctx, task, i)
			}
		}(w + 1)
	}

	for i := 0; i < n; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	p.logger.Sugar().Debugw("pool batch finished", "pool", p.name, "tasks", n, "failed", failed, "workers", workers)
	return errs
}

func (p *Pool) runOne(ctx context.Context, task Task, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Sugar().Errorw("task panicked", "pool", p.name, "index", i, "panic", r)
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
	}()
	return task(ctx, i)
}
