package execution

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mtest/internal/config"
	"mtest/internal/testdb"
)

// Progress receives pass/fail counts while tests complete
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// WorkerPool manages a pool of workers for parallel test execution
type WorkerPool struct {
	config   *config.Config
	runner   *Runner
	progress Progress
	logger   zerolog.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, logger zerolog.Logger) *WorkerPool {
	return &WorkerPool{
		config: cfg,
		runner: runner,
		logger: logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every test of the frozen database with at most
// config.Processors commands in flight. Results are returned in database
// order regardless of completion order. A launch failure cancels the
// remaining tests and is returned as the error.
func (wp *WorkerPool) Execute(ctx context.Context, db *testdb.Database) (Output, error) {
	if !db.Frozen() {
		return Output{}, ErrNotFrozen
	}
	tests := db.Tests()
	if len(tests) == 0 {
		return Output{}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	testQueue := make(chan int, len(tests))
	for i := range tests {
		testQueue <- i
	}
	close(testQueue)

	results := make([]Result, len(tests))

	var mu sync.Mutex
	var passed, failed int
	var firstErr error
	startTime := time.Now()

	workerCount := wp.config.Processors
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(tests) {
		workerCount = len(tests)
	}
	wp.logger.Debug().Int("tests", len(tests)).Int("workers", workerCount).Msg("Executing tests")

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range testQueue {
				if runCtx.Err() != nil {
					return
				}
				// a launch failure in another worker only stops queued tests
				result, err := wp.runner.Run(ctx, db, tests[index])

				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					mu.Unlock()
					return
				}
				results[index] = result
				if result.Passed() {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(passed, failed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	if firstErr != nil {
		return Output{}, firstErr
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	return Output{Results: results, Duration: time.Since(startTime)}, nil
}
