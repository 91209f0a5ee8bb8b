package mtesting

import (
	"os"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/cruldra/threadpool"
)

// NewContext is a convenience helper to create a new threadpool.Context
// suitable for use in the test suite. Its pool is shut down when the test
// finishes.
func NewContext(t *testing.T, size int) *threadpool.Context {
	t.Helper()

	log := &threadpool.Logger{Level: threadpool.LevelInfo}

	pool, err := threadpool.NewPool(log, size)
	assert.NoError(t, err)
	t.Cleanup(pool.Shutdown)

	return threadpool.NewContext(&threadpool.Args{Log: log, Pool: pool})
}

// WriteTempFile writes the given data to a temporary file whose name ends
// with pattern's suffix. It returns the path to the temporary file, which is
// removed when the test finishes.
func WriteTempFile(t *testing.T, pattern string, data []byte) string {
	t.Helper()

	tempFile, err := os.CreateTemp("", pattern)
	assert.NoError(t, err)
	t.Cleanup(func() { os.Remove(tempFile.Name()) })

	_, err = tempFile.Write(data)
	assert.NoError(t, err)

	err = tempFile.Close()
	assert.NoError(t, err)

	return tempFile.Name()
}
