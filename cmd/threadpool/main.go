package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cruldra/threadpool"
	"github.com/cruldra/threadpool/modules/mconfig"
	"github.com/cruldra/threadpool/modules/mfile"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a TOML or YAML config file")
		jobDuration = flag.Duration("job-duration", 200*time.Millisecond, "how long each demo job sleeps")
		logLevel    = flag.String("log-level", "", "log level: debug, info, warn or error")
		numJobs     = flag.Int("jobs", 8, "number of demo jobs to submit")
		port        = flag.Int("port", 0, "port to serve pool stats on (0 disables)")
		size        = flag.Int("size", 0, "number of workers")
		watch       = flag.String("watch", "", "directory to watch for changes after the demo")
	)
	flag.Parse()

	config := &threadpool.Config{}
	if *configPath != "" {
		var err error
		config, err = mconfig.LoadFile(&threadpool.Logger{Level: threadpool.LevelInfo}, *configPath)
		if err != nil {
			exitWithError(err)
		}
	}

	if *logLevel != "" {
		config.LogLevel = *logLevel
	}
	if *port != 0 {
		config.Port = *port
	}
	if *size != 0 {
		config.Size = *size
	}
	if *watch != "" {
		config.Watch = append(config.Watch, *watch)
	}

	err := threadpool.Run(config, func(c *threadpool.Context) error {
		for i := 0; i < *numJobs; i++ {
			i := i
			err := c.Pool.SubmitFunc(fmt.Sprintf("demo %d", i), func() {
				c.Log.Infof("Job %d started", i)
				time.Sleep(*jobDuration)
				c.Log.Infof("Job %d finished", i)
			})
			if err != nil {
				return err
			}
		}

		if len(config.Watch) == 0 {
			return nil
		}

		err := c.Watch(config.Watch, func(path string) error {
			sum, unchanged, err := mfile.Checksum(c, path)
			if err != nil {
				return err
			}
			if !unchanged {
				c.Log.Infof("%s: sha256 %s", path, sum)
			}
			return nil
		})
		if err != nil {
			return err
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		<-interrupt
		c.Log.Infof("Interrupted; shutting down")
		return nil
	})
	if err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
