//go:build !unix

package observability

import "os"

// lockFile is a no-op where flock(2) is unavailable; writes are still
// serialized within the process by the log's mutex.
func lockFile(*os.File) (unlock func() error, err error) {
	return func() error { return nil }, nil
}
