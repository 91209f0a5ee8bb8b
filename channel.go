package threadpool

import (
	"sync"
)

// NewChannel creates an unbounded FIFO job channel and returns its first
// sending endpoint along with its receiving endpoint.
//
// Any number of goroutines may share the Receiver. Each job sent is handed to
// exactly one of them.
func NewChannel() (*Sender, *Receiver) {
	ch := &channel{senders: 1}
	ch.cond = sync.NewCond(&ch.mu)

	return &Sender{ch: ch}, &Receiver{ch: ch}
}

// Sender is a sending endpoint of a job channel. It can be cloned for use by
// other submitters, and every clone must be closed before receivers observe
// end-of-stream.
type Sender struct {
	ch     *channel
	closed bool // guarded by ch.mu
}

// Clone produces an additional sending endpoint on the same channel. Cloning
// a closed Sender produces another closed Sender.
func (s *Sender) Clone() *Sender {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()

	if s.closed {
		return &Sender{ch: s.ch, closed: true}
	}

	s.ch.senders++
	return &Sender{ch: s.ch}
}

// Close relinquishes the sending endpoint. Once every sender is closed,
// receivers drain the remaining queue and then observe end-of-stream. Calling
// Close more than once has no further effect.
func (s *Sender) Close() {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	s.ch.senders--
	if s.ch.senders == 0 {
		s.ch.cond.Broadcast()
	}
}

// Send enqueues a job. It never blocks on capacity.
//
// If the sender has been closed or the receiving end is gone, a *SendError
// carrying the job is returned and the job is not enqueued.
func (s *Sender) Send(job *Job) error {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()

	if s.closed {
		return &SendError{Err: ErrChannelClosed, Job: job}
	}

	if s.ch.receiverClosed {
		return &SendError{Err: ErrNoReceivers, Job: job}
	}

	s.ch.queue = append(s.ch.queue, job)
	s.ch.cond.Signal()
	return nil
}

// Receiver is the receiving endpoint of a job channel.
type Receiver struct {
	ch *channel
}

// Close orphans the channel. Jobs still queued are dropped undelivered and
// their number is returned. Subsequent sends fail with ErrNoReceivers and
// blocked receivers observe end-of-stream.
func (r *Receiver) Close() int {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()

	dropped := len(r.ch.queue)
	r.ch.queue = nil
	r.ch.receiverClosed = true
	r.ch.cond.Broadcast()
	return dropped
}

// Len returns the number of jobs currently queued.
func (r *Receiver) Len() int {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()
	return len(r.ch.queue)
}

// Receive blocks until a job is available and returns it along with true. Once
// every sender has been closed and the queue is empty, it returns nil and
// false.
//
// The channel's lock is released before Receive returns, so it's never held
// while the caller runs the job.
func (r *Receiver) Receive() (*Job, bool) {
	r.ch.mu.Lock()
	defer r.ch.mu.Unlock()

	for len(r.ch.queue) == 0 && r.ch.senders > 0 && !r.ch.receiverClosed {
		r.ch.cond.Wait()
	}

	if len(r.ch.queue) == 0 {
		return nil, false
	}

	job := r.ch.queue[0]
	r.ch.queue[0] = nil
	r.ch.queue = r.ch.queue[1:]
	return job, true
}

//
// Private
//

type channel struct {
	cond           *sync.Cond
	mu             sync.Mutex
	queue          []*Job
	receiverClosed bool
	senders        int
}
