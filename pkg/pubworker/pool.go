package pubworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// PublishJob is one scheduled post's execution handed to the pool.
type PublishJob struct {
	PostID  string
	Handler func(ctx context.Context) error
	done    func(err error)
}

// PoolStats holds real-time pool metrics.
type PoolStats struct {
	NumWorkers      int           `json:"num_workers"`
	QueueSize       int           `json:"queue_size"`
	ActiveWorkers   int           `json:"active_workers"`
	TotalDispatched int64         `json:"total_dispatched"`
	TotalProcessed  int64         `json:"total_processed"`
	TotalErrors     int64         `json:"total_errors"`
	WorkerStats     []WorkerStats `json:"worker_stats"`
}

// WorkerStats holds metrics for a single worker.
type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool runs publish executions on a fixed set of workers. Jobs are sharded by
// post id, so two dispatches of the same post always land on the same worker
// and never run concurrently.
type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	stopCh     chan struct{}

	totalDispatched int64
	totalProcessed  int64
	totalErrors     int64
}

type worker struct {
	id            int
	jobQueue      chan PublishJob
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *Pool
}

// NewPool creates a publish worker pool.
func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
		stopCh:     make(chan struct{}),
	}
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan PublishJob, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[PUB_WORKER_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// RunBatch dispatches every job in the sub-batch and blocks until all of them
// have settled (success, failure or panic). It returns the number of jobs that
// ended in error. One job's failure never aborts its siblings.
func (p *Pool) RunBatch(ctx context.Context, jobs []PublishJob) int {
	if len(jobs) == 0 {
		return 0
	}

	var wg sync.WaitGroup
	var failed int64

	for _, job := range jobs {
		if atomic.LoadInt32(&p.stopped) == 1 {
			break
		}

		job := job
		wg.Add(1)
		job.done = func(err error) {
			if err != nil {
				atomic.AddInt64(&failed, 1)
			}
			wg.Done()
		}

		shard := p.shardForPost(job.PostID)
		atomic.AddInt64(&p.totalDispatched, 1)

		// Stop() closes the queues concurrently; the recover catches a send
		// that loses that race.
		sent := func() (ok bool) {
			defer func() {
				if r := recover(); r != nil {
					ok = false
				}
			}()
			select {
			case p.workers[shard].jobQueue <- job:
				return true
			case <-ctx.Done():
				return false
			case <-p.stopCh:
				return false
			}
		}()
		if !sent {
			job.done(context.Canceled)
		}
	}

	wg.Wait()
	return int(atomic.LoadInt64(&failed))
}

// Stop shuts the pool down gracefully, draining queued jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Info("[PUB_WORKER_POOL] Stopping workers...")

		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}

		p.wg.Wait()
		logrus.Info("[PUB_WORKER_POOL] All workers stopped")
	})
}

func (p *Pool) shardForPost(postID string) int {
	h := fnv.New32a()
	h.Write([]byte(postID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

// GetStats returns a snapshot of pool metrics.
func (p *Pool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, len(p.workers))
	activeWorkers := 0

	for i, w := range p.workers {
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}
		workerStats[i] = WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		}
	}

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		WorkerStats:     workerStats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[PUB_WORKER_POOL] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[PUB_WORKER_POOL] Worker %d shutting down", w.id)
				return
			}
			w.process(job)

		case <-w.ctx.Done():
			logrus.Debugf("[PUB_WORKER_POOL] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

// process runs one job with panic containment; a panicking handler settles as
// an error instead of killing the worker.
func (w *worker) process(job PublishJob) {
	var err error

	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[PUB_WORKER_POOL] Worker %d panic for post %s: %v", w.id, job.PostID, r)
			if job.done != nil {
				job.done(context.Canceled)
			}
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	err = job.Handler(w.ctx)
	if err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[PUB_WORKER_POOL] Worker %d job failed for post %s", w.id, job.PostID)
	}
	if job.done != nil {
		job.done(err)
	}
}

func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.process(job)
		default:
			return
		}
	}
}
