//go:build linux

package threadpool

import (
	"golang.org/x/sys/unix"
)

func osThreadID() int {
	return unix.Gettid()
}
