package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/source"
)

// FileResult is the outcome of compiling one file with CompileFiles.
type FileResult struct {
	Path     string
	Output   string
	Errors   []errors.ExpandoError
	Source   string
	WorkerID int
	Duration time.Duration
}

// PoolStats summarizes a CompileFiles run.
type PoolStats struct {
	WorkerCount   int
	TotalJobs     int
	CompletedJobs int
	FailedJobs    int
	TotalTime     time.Duration
	AverageTime   time.Duration
}

type compileJob struct {
	index int
	path  string
}

type compileResult struct {
	index int
	*FileResult
}

// workerPool compiles files on a fixed set of goroutines. Each job gets
// its own compiler, so no state is shared between files.
type workerPool struct {
	numWorkers int
	config     Config

	jobQueue   chan *compileJob
	resultChan chan *compileResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started    int32 // atomic
	stopped    int32 // atomic
	activeJobs int32 // atomic

	stats      PoolStats
	statsMutex sync.RWMutex
}

func newWorkerPool(config Config, buffer int) *workerPool {
	numWorkers := config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &workerPool{
		numWorkers: numWorkers,
		config:     config,
		jobQueue:   make(chan *compileJob, buffer),
		resultChan: make(chan *compileResult, buffer),
	}
}

func (wp *workerPool) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&wp.started, 0, 1) {
		return fmt.Errorf("worker pool already started")
	}
	wp.ctx, wp.cancel = context.WithCancel(ctx)
	wp.stats = PoolStats{WorkerCount: wp.numWorkers}

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(i)
	}
	return nil
}

func (wp *workerPool) Submit(job *compileJob) error {
	if atomic.LoadInt32(&wp.started) == 0 {
		return fmt.Errorf("worker pool not started")
	}
	if atomic.LoadInt32(&wp.stopped) == 1 {
		return fmt.Errorf("worker pool stopped")
	}

	select {
	case wp.jobQueue <- job:
		atomic.AddInt32(&wp.activeJobs, 1)
		wp.statsMutex.Lock()
		wp.stats.TotalJobs++
		wp.statsMutex.Unlock()
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

func (wp *workerPool) Results() <-chan *compileResult {
	return wp.resultChan
}

// Shutdown stops accepting jobs, waits for the workers and closes the
// result channel.
func (wp *workerPool) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&wp.stopped, 0, 1) {
		return fmt.Errorf("worker pool already stopped")
	}
	close(wp.jobQueue)
	wp.wg.Wait()
	wp.cancel()
	close(wp.resultChan)
	return nil
}

func (wp *workerPool) Stats() PoolStats {
	wp.statsMutex.RLock()
	defer wp.statsMutex.RUnlock()
	return wp.stats
}

func (wp *workerPool) run(id int) {
	defer wp.wg.Done()
	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			result := wp.process(id, job)

			wp.statsMutex.Lock()
			if len(result.Errors) == 0 {
				wp.stats.CompletedJobs++
			} else {
				wp.stats.FailedJobs++
			}
			wp.stats.TotalTime += result.Duration
			if done := wp.stats.CompletedJobs + wp.stats.FailedJobs; done > 0 {
				wp.stats.AverageTime = wp.stats.TotalTime / time.Duration(done)
			}
			wp.statsMutex.Unlock()
			atomic.AddInt32(&wp.activeJobs, -1)

			select {
			case wp.resultChan <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *workerPool) process(id int, job *compileJob) *compileResult {
	start := time.Now()
	result := &compileResult{index: job.index, FileResult: &FileResult{Path: job.path, WorkerID: id}}

	content, err := os.ReadFile(job.path)
	if err != nil {
		result.Errors = []errors.ExpandoError{&errors.CompileError{
			Msg:   fmt.Sprintf("Failed to read file '%s': %s", job.path, err.Error()),
			Cause: err,
		}}
		result.Duration = time.Since(start)
		return result
	}
	result.Source = string(content)

	stmts, errs := CompileSource(source.FromFile(job.path, result.Source), wp.config)
	if len(errs) > 0 {
		result.Errors = errs
	} else {
		result.Output = js.NewPrinter(wp.config.Indent).Print(stmts)
	}
	result.Duration = time.Since(start)
	debugPrintf("// DEBUG worker %d compiled %s in %s\n", id, job.path, result.Duration)
	return result
}

// CompileFiles compiles paths in parallel. Results come back in input
// order; a file that was never compiled because ctx ended carries the
// context error. The error reports a pool that failed to start or stop.
func CompileFiles(ctx context.Context, paths []string, config Config) ([]*FileResult, PoolStats, error) {
	pool := newWorkerPool(config, len(paths))
	if err := pool.Start(ctx); err != nil {
		return nil, PoolStats{}, fmt.Errorf("starting worker pool: %w", err)
	}

	shutdown := make(chan error, 1)
	go func() {
		for i, path := range paths {
			if err := pool.Submit(&compileJob{index: i, path: path}); err != nil {
				break
			}
		}
		shutdown <- pool.Shutdown()
	}()

	results := make([]*FileResult, len(paths))
	for r := range pool.Results() {
		results[r.index] = r.FileResult
	}
	for i, r := range results {
		if r == nil {
			cause := ctx.Err()
			if cause == nil {
				cause = fmt.Errorf("not compiled")
			}
			results[i] = &FileResult{Path: paths[i], Errors: []errors.ExpandoError{&errors.CompileError{
				Msg:   fmt.Sprintf("compilation of '%s' cancelled: %s", paths[i], cause),
				Cause: cause,
			}}}
		}
	}
	if err := <-shutdown; err != nil {
		return results, pool.Stats(), fmt.Errorf("stopping worker pool: %w", err)
	}
	return results, pool.Stats(), nil
}
