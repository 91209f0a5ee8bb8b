package mfile

import (
	"os"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/cruldra/threadpool/modules/mtesting"
)

func TestChecksum(t *testing.T) {
	c := mtesting.NewContext(t, 1)
	path := mtesting.WriteTempFile(t, "checksum", []byte("hello"))

	sum, unchanged, err := Checksum(c, path)
	assert.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
	assert.False(t, unchanged)

	_, unchanged, err = Checksum(c, path)
	assert.NoError(t, err)
	assert.True(t, unchanged)

	assert.NoError(t, os.WriteFile(path, []byte("hello, world"), 0o600))

	sum2, unchanged, err := Checksum(c, path)
	assert.NoError(t, err)
	assert.NotEqual(t, sum, sum2)
	assert.False(t, unchanged)
}

func TestChecksum_Missing(t *testing.T) {
	c := mtesting.NewContext(t, 1)

	_, _, err := Checksum(c, "does-not-exist")
	assert.Error(t, err)
}
