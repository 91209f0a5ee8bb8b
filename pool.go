package threadpool

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/xerrors"
)

// Pool is a fixed-size group of workers that execute submitted jobs.
//
// Jobs are fire-and-forget: nothing is returned to the submitter, but errors
// and panics raised by jobs are logged and collected in JobErrors.
type Pool struct {
	// NumJobs is the number of jobs accepted by Submit.
	NumJobs int64

	// NumJobsErrored is the number of jobs that returned an error or
	// panicked.
	NumJobsErrored int64

	// NumJobsExecuted is the number of jobs that ran to completion, whether
	// they errored or not.
	NumJobsExecuted int64

	jobErrors    []error
	jobErrorsMu  sync.Mutex
	lockOSThread bool
	log          LoggerInterface
	receiver     *Receiver

	// sender is nil once shutdown has begun. Submit holds a read lock for the
	// duration of a send so that Shutdown can't close it mid-flight.
	sender   *Sender
	senderMu sync.RWMutex

	shutdownOnce sync.Once
	workers      []*worker
}

// PoolArgs are the set of arguments accepted by NewPoolWithArgs.
type PoolArgs struct {
	// LockOSThread pins every worker to its own OS thread for its lifetime.
	LockOSThread bool

	Log LoggerInterface

	// Size is the number of workers. Must be at least 1.
	Size int
}

// NewPool initializes a new pool with the given number of workers and starts
// them.
func NewPool(log LoggerInterface, size int) (*Pool, error) {
	return NewPoolWithArgs(&PoolArgs{Log: log, Size: size})
}

// NewPoolWithArgs initializes a new pool and starts its workers. It either
// returns a pool with exactly args.Size running workers or an error with
// nothing spawned.
func NewPoolWithArgs(args *PoolArgs) (*Pool, error) {
	if args.Size < 1 {
		return nil, xerrors.Errorf("error creating pool of size %d: %w", args.Size, ErrInvalidSize)
	}

	log := args.Log
	if log == nil {
		log = &Logger{Level: LevelInfo}
	}

	sender, receiver := NewChannel()

	p := &Pool{
		lockOSThread: args.LockOSThread,
		log:          log,
		receiver:     receiver,
		sender:       sender,
		workers:      make([]*worker, args.Size),
	}

	p.log.Debugf("pool: Starting %v worker(s)", args.Size)

	// Block until every worker is inside its loop so that statistics are
	// stable as soon as the pool is returned.
	var started sync.WaitGroup
	started.Add(args.Size)

	for i := 0; i < args.Size; i++ {
		w := newWorker(i)
		p.workers[i] = w
		go p.work(w, &started)
	}

	started.Wait()
	return p, nil
}

// JobErrors returns a copy of the faults recorded so far. Each is a
// *JobFault.
func (p *Pool) JobErrors() []error {
	p.jobErrorsMu.Lock()
	defer p.jobErrorsMu.Unlock()

	if p.jobErrors == nil {
		return nil
	}

	errs := make([]error, len(p.jobErrors))
	copy(errs, p.jobErrors)
	return errs
}

// Shutdown stops accepting jobs, lets workers drain everything already
// queued, and waits for every worker to exit, in worker order.
//
// It's safe to call Shutdown more than once or from several goroutines. Every
// call returns only after the pool is fully stopped.
//
// Shutdown must not be called synchronously from inside a job: the worker
// running that job would wait on itself and deadlock. A job that needs to stop
// its pool should call Shutdown from a new goroutine.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.senderMu.Lock()
		sender := p.sender
		p.sender = nil
		p.senderMu.Unlock()

		p.log.Debugf("pool: Shutting down; %v job(s) left in queue", p.receiver.Len())

		sender.Close()

		for _, w := range p.workers {
			w.join()
			p.log.Debugf("pool: Worker %v stopped", w.id)
		}

		p.log.Debugf("pool: Shut down after %v job(s) (%v errored)",
			atomic.LoadInt64(&p.NumJobsExecuted), atomic.LoadInt64(&p.NumJobsErrored))
	})
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Submit hands a job off to the pool. It never blocks waiting for a worker.
//
// A *SubmissionError wrapping ErrPoolShutdown is returned if Shutdown has
// already been called, in which case the job will never run. A nil job or one
// without a body is refused with ErrInvalidJob.
func (p *Pool) Submit(job *Job) error {
	if job == nil || job.F == nil {
		return &SubmissionError{Err: ErrInvalidJob, Job: job}
	}

	p.senderMu.RLock()
	defer p.senderMu.RUnlock()

	if p.sender == nil {
		return &SubmissionError{Err: ErrPoolShutdown, Job: job}
	}

	if err := p.sender.Send(job); err != nil {
		return &SubmissionError{Err: err, Job: job}
	}

	atomic.AddInt64(&p.NumJobs, 1)
	return nil
}

// SubmitFunc is a shortcut for submitting a closure that can't fail.
func (p *Pool) SubmitFunc(name string, f func()) error {
	return p.Submit(NewJob(name, func() error {
		f()
		return nil
	}))
}

//
// Private
//

// The work loop for a single worker goroutine. started is nil when the loop is
// resumed on a replacement goroutine.
func (p *Pool) work(w *worker, started *sync.WaitGroup) {
	endOfStream := false

	defer func() {
		if endOfStream {
			w.stop()
			return
		}

		// A job called runtime.Goexit, which unwinds this goroutine no matter
		// what. workJob has already recorded the fault, so carry on with the
		// queue on a fresh goroutine.
		p.log.Warnf("pool: Worker %v resuming on a new goroutine", w.id)
		go p.work(w, nil)
	}()

	w.setThreadID(p.pinThread())
	w.setState(WorkerRunning, "")
	if started != nil {
		started.Done()
	}

	for {
		job, ok := p.receiver.Receive()
		if !ok {
			p.log.Debugf("pool: Worker %v observed end of stream", w.id)
			endOfStream = true
			return
		}

		p.workJob(w, job)
	}
}

// Runs a single job. Errors and panics from the job's body are contained here
// so that the worker survives them.
func (p *Pool) workJob(w *worker, job *Job) {
	w.setState(WorkerExecuting, job.Name)
	p.log.Debugf("pool: Worker %v executing job: %s", w.id, job.Name)

	start := time.Now()

	var completed bool
	var err error

	defer func() {
		r := recover()
		switch val := r.(type) {
		case nil:
			// Either panic(nil) or runtime.Goexit. Neither is distinguishable
			// from the other here, and both are faults.
			if !completed {
				err = ErrJobExited
			}
		case error:
			err = xerrors.Errorf("job panicked: %w", val)
		default:
			err = xerrors.Errorf("job panicked: %v", val)
		}

		atomic.AddInt64(&p.NumJobsExecuted, 1)

		if err != nil {
			atomic.AddInt64(&p.NumJobsErrored, 1)

			fault := &JobFault{Err: err, Job: job.Name, Worker: w.id}
			p.jobErrorsMu.Lock()
			p.jobErrors = append(p.jobErrors, fault)
			p.jobErrorsMu.Unlock()

			p.log.Errorf("pool: %v", fault)
		} else {
			p.log.Debugf("pool: Worker %v finished job '%s' in %v", w.id, job.Name, time.Since(start))
		}

		w.setState(WorkerRunning, "")
	}()

	err = job.F()
	completed = true
}
