package threadpool

import (
	"bytes"
	"sync/atomic"
	"testing"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestRun(t *testing.T) {
	var counter int64
	var pool *Pool

	err := Run(&Config{Log: newTestLogger(), Size: 4}, func(c *Context) error {
		pool = c.Pool
		for i := 0; i < 8; i++ {
			assert.NoError(t, c.Submit("increment", func() error {
				atomic.AddInt64(&counter, 1)
				return nil
			}))
		}
		return nil
	})
	assert.NoError(t, err)

	// All jobs ran and the pool is closed by the time Run returns.
	assert.Equal(t, int64(8), counter)
	assert.True(t, xerrors.Is(pool.SubmitFunc("late", func() {}), ErrPoolShutdown))
}

func TestRun_Defaults(t *testing.T) {
	var size int
	err := Run(nil, func(c *Context) error {
		size = c.Pool.Size()
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 4, size)
}

func TestRun_FunctionError(t *testing.T) {
	fErr := xerrors.New("build failed")

	err := Run(&Config{Log: newTestLogger()}, func(c *Context) error {
		assert.NoError(t, c.Submit("fails too", func() error { return xerrors.New("job failed") }))
		return fErr
	})
	assert.Equal(t, fErr, err)
}

func TestRun_JobErrors(t *testing.T) {
	var buf bytes.Buffer

	err := Run(&Config{Log: &Logger{Level: LevelInfo, Out: &buf}, Size: 2}, func(c *Context) error {
		assert.NoError(t, c.Submit("ok", func() error { return nil }))
		assert.NoError(t, c.Submit("bad", func() error { return xerrors.New("job failed") }))
		return nil
	})

	var fault *JobFault
	assert.True(t, xerrors.As(err, &fault))
	assert.Equal(t, "bad", fault.Job)
	assert.Contains(t, err.Error(), "1 job(s) failed")
	assert.Contains(t, buf.String(), "Ran 2 job(s) on 2 worker(s)")
}

func TestRun_Panic(t *testing.T) {
	var counter int64

	assert.Panics(t, func() {
		_ = Run(&Config{Log: newTestLogger()}, func(c *Context) error {
			assert.NoError(t, c.Submit("increment", func() error {
				atomic.AddInt64(&counter, 1)
				return nil
			}))
			panic("user function panicked")
		})
	})

	// The pool was still drained on the way out.
	assert.Equal(t, int64(1), counter)
}

func TestRun_BadLogLevel(t *testing.T) {
	err := Run(&Config{LogLevel: "loud"}, func(c *Context) error {
		assert.Fail(t, "Should not have run")
		return nil
	})
	assert.Error(t, err)
}
