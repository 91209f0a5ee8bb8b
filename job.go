package threadpool

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Job is a wrapper for a piece of work that should be executed by the pool.
//
// A job runs exactly once, on whichever worker claims it. Its closure may be
// executed on a different goroutine (and OS thread) from the one that
// submitted it, so anything it captures must be safe to use from there.
type Job struct {
	// F is the job's body. An error returned from it, or a panic raised
	// inside it, is recorded by the pool as a JobFault.
	F func() error

	// Name identifies the job in logs and statistics.
	Name string
}

// NewJob initializes a new named job.
func NewJob(name string, f func() error) *Job {
	return &Job{Name: name, F: f}
}

var (
	// ErrChannelClosed is returned when sending on a Sender that's already
	// been closed.
	ErrChannelClosed = xerrors.New("send on closed channel")

	// ErrInvalidJob is returned when submitting a nil job or one without a
	// body.
	ErrInvalidJob = xerrors.New("job is nil or has no body")

	// ErrJobExited is recorded for a job whose body neither returned nor
	// raised a recoverable panic, like one that called runtime.Goexit or
	// panicked with nil.
	ErrJobExited = xerrors.New("job exited without returning")

	// ErrInvalidSize is returned when a pool is requested with fewer than one
	// worker.
	ErrInvalidSize = xerrors.New("pool size must be at least 1")

	// ErrNoReceivers is returned when sending on a channel whose receiving
	// end has been closed.
	ErrNoReceivers = xerrors.New("channel has no receivers")

	// ErrPoolShutdown is returned by Submit after Shutdown has been called.
	ErrPoolShutdown = xerrors.New("pool is shut down")
)

// SendError is returned from Sender.Send when a job couldn't be enqueued. The
// job is handed back to the caller untouched.
type SendError struct {
	Err error
	Job *Job
}

func (e *SendError) Error() string {
	return fmt.Sprintf("error sending job '%s': %v", jobName(e.Job), e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// SubmissionError is returned from Pool.Submit when the pool isn't accepting
// jobs anymore. The job was not and will not be executed.
type SubmissionError struct {
	Err error
	Job *Job
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("error submitting job '%s': %v", jobName(e.Job), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// JobFault records a job whose body returned an error or panicked.
type JobFault struct {
	Err    error
	Job    string
	Worker int
}

func (e *JobFault) Error() string {
	return fmt.Sprintf("job '%s' failed on worker %d: %v", e.Job, e.Worker, e.Err)
}

func (e *JobFault) Unwrap() error {
	return e.Err
}

func jobName(job *Job) string {
	if job == nil {
		return "<nil>"
	}
	return job.Name
}
