package threadpool

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/xerrors"
)

//////////////////////////////////////////////////////////////////////////////
//
//
//
// Public
//
//
//
//////////////////////////////////////////////////////////////////////////////

// Watch starts watching the given paths for changes. For every relevant change
// a job running onChange with the changed path is submitted to the pool.
//
// Watching stops when the Context's Run finishes, before the pool is shut
// down.
func (c *Context) Watch(paths []string, onChange func(path string) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return xerrors.Errorf("error starting watcher: %w", err)
	}

	for _, path := range paths {
		if err := fsw.Add(path); err != nil {
			fsw.Close()
			return xerrors.Errorf("error watching '%s': %w", path, err)
		}
		c.Log.Infof("Watching for changes: %s", path)
	}

	w := &watcher{done: make(chan struct{}), fsw: fsw}
	go func() {
		defer close(w.done)
		watchChanges(c, fsw.Events, fsw.Errors, onChange)
	}()

	c.watchersMu.Lock()
	c.watchers = append(c.watchers, w)
	c.watchersMu.Unlock()

	return nil
}

//////////////////////////////////////////////////////////////////////////////
//
//
//
// Private
//
//
//
//////////////////////////////////////////////////////////////////////////////

// The time window in which a second change on the same file is ignored. A
// single save in most editors produces a burst of events.
const sameFileQuiesceTime = 100 * time.Millisecond

type watcher struct {
	done chan struct{}
	fsw  *fsnotify.Watcher
}

// Closes the underlying watcher, which closes its channels, then waits for the
// loop in watchChanges to notice.
func (w *watcher) stop(c *Context) {
	if err := w.fsw.Close(); err != nil {
		c.Log.Errorf("Error closing watcher: %v", err)
	}
	<-w.done
}

// Listens for file system changes from fsnotify and submits a job for each
// relevant one. Returns when either channel is closed or the pool stops
// accepting jobs.
func watchChanges(c *Context, watchEvents chan fsnotify.Event, watchErrors chan error,
	onChange func(path string) error) {

	recentChanges := gocache.New(sameFileQuiesceTime, 10*sameFileQuiesceTime)

	for {
		select {
		case event, ok := <-watchEvents:
			if !ok {
				c.Log.Infof("Watcher detected closed channel; stopping")
				return
			}

			c.Log.Debugf("Received event from watcher: %+v", event)

			if !shouldSubmit(event.Name, event.Op) {
				continue
			}

			// Add fails if the path changed within the quiesce time.
			if err := recentChanges.Add(event.Name, struct{}{}, gocache.DefaultExpiration); err != nil {
				c.Log.Debugf("File %s changed within quiesce time; not submitting", event.Name)
				continue
			}

			path := event.Name
			err := c.Submit("watch: "+path, func() error {
				return onChange(path)
			})
			if err != nil {
				c.Log.Errorf("Error submitting job for change to %s: %v", path, err)
				return
			}

		case err, ok := <-watchErrors:
			if !ok {
				c.Log.Infof("Watcher detected closed channel; stopping")
				return
			}
			c.Log.Errorf("Error from watcher: %v", err)
		}
	}
}

// Decides whether a job should be submitted given some input event properties
// from fsnotify.
func shouldSubmit(path string, op fsnotify.Op) bool {
	base := filepath.Base(path)

	// Mac OS' worst mistake.
	if base == ".DS_Store" {
		return false
	}

	// Vim creates this temporary file to see whether it can write into a
	// target directory.
	if base == "4913" {
		return false
	}

	// Vim backups.
	if strings.HasSuffix(base, "~") {
		return false
	}

	if op&fsnotify.Create != 0 {
		return true
	}

	if op&fsnotify.Write != 0 {
		return true
	}

	// Removes, renames and chmods leave nothing to process. A rename produces
	// a create on the new name anyway.
	return false
}
