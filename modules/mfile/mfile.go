package mfile

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/xerrors"

	"github.com/cruldra/threadpool"
)

// Checksum returns the hex-encoded SHA-256 of a file's contents along with
// whether it's unchanged since the last time Checksum was called on it.
func Checksum(c *threadpool.Context, source string) (string, bool, error) {
	in, err := os.Open(source)
	if err != nil {
		return "", false, xerrors.Errorf("error opening checksum source: %w", err)
	}
	defer in.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, in); err != nil {
		return "", false, xerrors.Errorf("error reading checksum source: %w", err)
	}

	sum := hex.EncodeToString(hash.Sum(nil))

	last, ok := checksumCache.Get(source)
	checksumCache.Set(source, sum, gocache.DefaultExpiration)

	unchanged := ok && last.(string) == sum
	if unchanged {
		c.Log.Debugf("mfile: No changes to source: %s", source)
	}

	return sum, unchanged, nil
}

//
// Private
//

// Last checksums seen by Checksum, keyed by path.
var checksumCache = gocache.New(30*time.Minute, 60*time.Minute)
