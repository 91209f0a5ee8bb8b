package threadpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerState is the lifecycle state of a single worker.
type WorkerState string

// Worker states. A worker moves between running and executing until the job
// channel reports end-of-stream, after which it's stopped for good.
const (
	WorkerRunning   WorkerState = "running"
	WorkerExecuting WorkerState = "executing"
	WorkerStopped   WorkerState = "stopped"
)

// WorkerStatus is a snapshot of a worker for diagnostics.
type WorkerStatus struct {
	ID int `json:"id"`

	// Job is the name of the job being executed, if any.
	Job string `json:"job,omitempty"`

	State WorkerState `json:"state"`

	// ThreadID is the OS thread the worker is pinned to. Zero unless the pool
	// was started with LockOSThread on a platform that reports thread IDs.
	ThreadID int `json:"thread_id,omitempty"`
}

// Stats is a point-in-time snapshot of a pool.
type Stats struct {
	NumJobs         int64          `json:"num_jobs"`
	NumJobsErrored  int64          `json:"num_jobs_errored"`
	NumJobsExecuted int64          `json:"num_jobs_executed"`
	NumJobsQueued   int            `json:"num_jobs_queued"`
	Size            int            `json:"size"`
	Workers         []WorkerStatus `json:"workers"`
}

// Stats returns a snapshot of the pool's counters and workers.
func (p *Pool) Stats() *Stats {
	stats := &Stats{
		NumJobs:         atomic.LoadInt64(&p.NumJobs),
		NumJobsErrored:  atomic.LoadInt64(&p.NumJobsErrored),
		NumJobsExecuted: atomic.LoadInt64(&p.NumJobsExecuted),
		NumJobsQueued:   p.receiver.Len(),
		Size:            len(p.workers),
		Workers:         make([]WorkerStatus, len(p.workers)),
	}

	for i, w := range p.workers {
		stats.Workers[i] = w.status()
	}

	return stats
}

//
// Private
//

type worker struct {
	done     chan struct{}
	id       int
	job      string
	mu       sync.Mutex
	state    WorkerState
	threadID int
}

func newWorker(id int) *worker {
	return &worker{
		done:  make(chan struct{}),
		id:    id,
		state: WorkerRunning,
	}
}

// Blocks until the worker's goroutine has exited.
func (w *worker) join() {
	<-w.done
}

func (w *worker) setState(state WorkerState, job string) {
	w.mu.Lock()
	w.state = state
	w.job = job
	w.mu.Unlock()
}

func (w *worker) setThreadID(threadID int) {
	w.mu.Lock()
	w.threadID = threadID
	w.mu.Unlock()
}

func (w *worker) status() WorkerStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WorkerStatus{
		ID:       w.id,
		Job:      w.job,
		State:    w.state,
		ThreadID: w.threadID,
	}
}

func (w *worker) stop() {
	w.setState(WorkerStopped, "")
	close(w.done)
}

// Locks the calling goroutine to its OS thread if the pool is configured to do
// so and returns the thread's ID where available. The lock is never released,
// so the thread exits along with the worker.
func (p *Pool) pinThread() int {
	if !p.lockOSThread {
		return 0
	}

	runtime.LockOSThread()
	return osThreadID()
}
