package core

import "sync"

var (
	sharedOnce sync.Once
	shared     *taskManager
)

// SharedTaskManager returns the process-wide registry, building it on the
// first call. Concurrent first calls build it exactly once; later calls only
// read the pointer and always return the same instance.
//
// Options are applied by the call that builds the registry and ignored by
// every call after it, so the host process should make the first call
// (see internal.NewApp) and pass the result to the components that need it.
func SharedTaskManager(opts ...Option) TaskManager {
	sharedOnce.Do(func() {
		shared = newTaskManager(opts...)
	})
	return shared
}
