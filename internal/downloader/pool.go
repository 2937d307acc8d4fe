// internal/downloader/pool.go
package downloader

import (
	"context"
	"sync"
)

// WorkerPool runs downloads on a fixed number of workers
type WorkerPool struct {
	downloader  *Downloader
	concurrency int
}

// NewWorkerPool creates a pool; concurrency is clamped to [1, maxWorkers]
func NewWorkerPool(d *Downloader, concurrency, maxWorkers int) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 5
	}
	if maxWorkers > 0 && concurrency > maxWorkers {
		concurrency = maxWorkers
	}
	return &WorkerPool{downloader: d, concurrency: concurrency}
}

// DownloadBatch saves every job's image into dir. onDone, if set, is called
// from the collecting goroutine after each finished job. Jobs not started
// before ctx is cancelled are reported with the context error.
func (wp *WorkerPool) DownloadBatch(ctx context.Context, jobs []Job, dir string, onDone func(Result)) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}

	queue := make(chan Job, len(jobs))
	results := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for w := 1; w <= wp.concurrency; w++ {
		wg.Add(1)
		go wp.worker(ctx, w, queue, results, dir, &wg)
	}

	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	all := make([]Result, 0, len(jobs))
	for r := range results {
		all = append(all, r)
		if onDone != nil {
			onDone(r)
		}
	}
	return all
}

func (wp *WorkerPool) worker(ctx context.Context, id int, queue <-chan Job, results chan<- Result, dir string, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := wp.downloader.logger.With().Int("worker_id", id).Logger()

	for job := range queue {
		if err := ctx.Err(); err != nil {
			results <- Result{Job: job, Err: err}
			continue
		}

		logger.Debug().Str("url", job.ImageURL).Msg("Worker processing download")
		results <- wp.downloader.Download(ctx, job, dir)
	}
}
