// Package threadpool runs one-shot jobs on a fixed set of workers and shuts
// them down deterministically, draining everything submitted beforehand.
package threadpool

import (
	"context"
	"time"

	"golang.org/x/xerrors"
)

// Config contains configuration.
type Config struct {
	// Colors enables colored log output for the default logger.
	Colors bool `toml:"colors" yaml:"colors"`

	// Log specifies a logger to use.
	//
	// Defaults to an instance of Logger running at the level in LogLevel.
	Log LoggerInterface `toml:"-" yaml:"-"`

	// LogLevel is the level of the default logger when Log isn't set.
	//
	// Defaults to "info".
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// LockOSThread pins every worker to its own OS thread.
	LockOSThread bool `toml:"lock_os_thread" yaml:"lock_os_thread"`

	// Port is the port on which pool statistics are served over HTTP. Zero
	// disables the server.
	Port int `toml:"port" yaml:"port"`

	// Size is the number of workers in the pool.
	//
	// Defaults to 4.
	Size int `toml:"size" yaml:"size"`

	// Watch is a list of paths that the CLI watches for changes.
	Watch []string `toml:"watch" yaml:"watch"`
}

// Run is the main entry point to the package. It starts a pool according to
// config, hands a Context to f, and shuts everything down once f returns,
// whether it succeeded, failed or panicked. All jobs submitted by f are
// executed before Run returns.
//
// The error from f is returned if there was one. Otherwise, an error is
// returned if any submitted job faulted.
func Run(config *Config, f func(*Context) error) (err error) {
	if config == nil {
		config = &Config{}
	}

	if err := fillDefaults(config); err != nil {
		return err
	}

	pool, err := NewPoolWithArgs(&PoolArgs{
		LockOSThread: config.LockOSThread,
		Log:          config.Log,
		Size:         config.Size,
	})
	if err != nil {
		return err
	}

	c := NewContext(&Args{
		Log:  config.Log,
		Pool: pool,
		Port: config.Port,
	})

	if c.Port != 0 {
		server := startServingStats(c)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				c.Log.Errorf("Error shutting down stats server: %v", err)
			}
		}()
	}

	defer func() {
		c.stopWatching()
		pool.Shutdown()

		jobErrors := pool.JobErrors()
		for i, jobErr := range jobErrors {
			c.Log.Errorf("Job error: %v", jobErr)

			if i >= 9 {
				c.Log.Errorf("Too many errors.")
				break
			}
		}

		c.Log.Infof("Ran %v job(s) on %v worker(s) in %s (%v errored)",
			pool.NumJobsExecuted, pool.Size(), time.Since(c.Start), pool.NumJobsErrored)

		if err == nil && len(jobErrors) > 0 {
			err = xerrors.Errorf("%d job(s) failed; first: %w", len(jobErrors), jobErrors[0])
		}
	}()

	return f(c)
}

//
// Private
//

func fillDefaults(config *Config) error {
	if config.Size <= 0 {
		config.Size = 4
	}

	if config.Log == nil {
		level, err := ParseLevel(config.LogLevel)
		if err != nil {
			return xerrors.Errorf("error configuring logger: %w", err)
		}

		config.Log = &Logger{Colors: config.Colors, Level: level}
	}

	return nil
}
