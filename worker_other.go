//go:build !linux

package threadpool

// Thread IDs aren't reported outside of Linux.
func osThreadID() int {
	return 0
}
