package core

import (
	"sync"
	"testing"

	"github.com/valter-silva-au/eztask/pkg/models"
)

// resetShared drops the process-wide registry so each test starts fresh.
func resetShared(t *testing.T) {
	t.Helper()
	sharedOnce = sync.Once{}
	shared = nil
	t.Cleanup(func() {
		sharedOnce = sync.Once{}
		shared = nil
	})
}

func TestSharedTaskManager_SameInstance(t *testing.T) {
	resetShared(t)

	first := SharedTaskManager()
	first.CreateTask("Task 1", "", models.NewUser("Alice"))
	second := SharedTaskManager()

	if first != second {
		t.Fatal("expected the same registry from every call")
	}
	if second.Len() != 1 {
		t.Errorf("expected the task created through the first handle, got %d tasks", second.Len())
	}
}

func TestSharedTaskManager_ConcurrentFirstCalls(t *testing.T) {
	resetShared(t)
	before := managersBuilt.Load()

	const n = 100
	got := make([]TaskManager, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got[i] = SharedTaskManager()
		}()
	}
	close(start)
	wg.Wait()

	if built := managersBuilt.Load() - before; built != 1 {
		t.Errorf("expected exactly 1 construction, got %d", built)
	}
	for i, mgr := range got {
		if mgr != got[0] {
			t.Fatalf("call %d returned a different registry", i)
		}
	}
}

func TestSharedTaskManager_OptionsFromFirstCallOnly(t *testing.T) {
	resetShared(t)
	firstLogger := &recordingLogger{}
	laterLogger := &recordingLogger{}

	mgr := SharedTaskManager(WithEventLogger(firstLogger))
	SharedTaskManager(WithEventLogger(laterLogger)).CreateTask("t", "d", nil)

	if len(firstLogger.ofType(EventTaskCreated)) != 1 {
		t.Error("expected the first caller's logger to receive the event")
	}
	if len(laterLogger.ofType(EventTaskCreated)) != 0 {
		t.Error("options passed after construction should be ignored")
	}
	if mgr.Len() != 1 {
		t.Errorf("expected 1 task, got %d", mgr.Len())
	}
}

func TestNewTaskManager_Independent(t *testing.T) {
	resetShared(t)
	a := NewTaskManager()
	b := NewTaskManager()
	a.CreateTask("t", "d", nil)

	if b.Len() != 0 || SharedTaskManager().Len() != 0 {
		t.Error("NewTaskManager registries should not share state")
	}
}
