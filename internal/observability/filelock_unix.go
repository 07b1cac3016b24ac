//go:build unix

package observability

import (
	"fmt"
	"os"
	"syscall"
)

// lockFile takes an exclusive flock(2) on f, blocking until it is free, so
// that eztask processes sharing one event log append whole lines. It returns
// the function that releases the lock.
func lockFile(f *os.File) (unlock func() error, err error) {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	return func() error {
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
