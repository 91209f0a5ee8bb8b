package threadpool

import (
	"sync"
	"time"
)

// Args are the set of arguments accepted by NewContext.
type Args struct {
	Log  LoggerInterface
	Pool *Pool
	Port int
}

// Context contains useful state that can be used by a user-provided function
// running inside Run.
type Context struct {
	// Log is a logger that can be used to print information.
	Log LoggerInterface

	// Pool is the worker pool that jobs should be submitted to.
	Pool *Pool

	// Port is the port the stats server listens on. Zero means that it's
	// disabled.
	Port int

	// Start is the time at which the context was created.
	Start time.Time

	watchers   []*watcher
	watchersMu sync.Mutex
}

// NewContext initializes and returns a new Context.
func NewContext(args *Args) *Context {
	return &Context{
		Log:   args.Log,
		Pool:  args.Pool,
		Port:  args.Port,
		Start: time.Now(),
	}
}

// Submit is a shortcut for submitting a named job to the context's pool.
func (c *Context) Submit(name string, f func() error) error {
	return c.Pool.Submit(NewJob(name, f))
}

// Stops all watchers started with Watch and waits for them to exit. Run calls
// this before shutting the pool down so that no watcher submits into a closed
// pool.
func (c *Context) stopWatching() {
	c.watchersMu.Lock()
	watchers := c.watchers
	c.watchers = nil
	c.watchersMu.Unlock()

	for _, w := range watchers {
		w.stop(c)
	}
}
