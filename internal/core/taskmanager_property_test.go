package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/valter-silva-au/eztask/pkg/models"
	"pgregory.net/rapid"
)

// TestProperty_RegistryKeepsEveryInsert verifies that N concurrent creates and
// adds leave exactly N tasks in the registry, each one present once.
func TestProperty_RegistryKeepsEveryInsert(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr := NewTaskManager()
		creates := rapid.IntRange(0, 40).Draw(rt, "creates")
		adds := rapid.IntRange(0, 40).Draw(rt, "adds")

		var wg sync.WaitGroup
		for i := 0; i < creates; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				mgr.CreateTask(fmt.Sprintf("c%d", i), "", nil)
			}()
		}
		for i := 0; i < adds; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				mgr.AddTask(models.NewTask(fmt.Sprintf("a%d", i), "", nil))
			}()
		}
		wg.Wait()

		tasks := mgr.GetTaskList()
		if len(tasks) != creates+adds {
			rt.Fatalf("registry has %d tasks, want %d", len(tasks), creates+adds)
		}
		seen := make(map[string]bool, len(tasks))
		for _, task := range tasks {
			if seen[task.Title()] {
				rt.Fatalf("task %q registered twice", task.Title())
			}
			seen[task.Title()] = true
		}
	})
}

// TestProperty_SequentialUpdatesLastWriteWins verifies that after any
// sequence of single-goroutine updates each field holds the last value
// written to it.
func TestProperty_SequentialUpdatesLastWriteWins(t *testing.T) {
	statusGen := rapid.SampledFrom(append(models.AllStatuses(), models.StatusUnset))
	priorityGen := rapid.SampledFrom(append(models.AllPriorities(), models.PriorityUnset))
	nameGen := rapid.SampledFrom([]string{"Alice", "Bob", "Carol"})

	rapid.Check(t, func(rt *rapid.T) {
		mgr := NewTaskManager(WithClock(tickingClock()))
		task := mgr.CreateTask("t", "d", nil)

		var wantStatus models.TaskStatus
		var wantPriority models.Priority
		var wantAssignee *models.User
		wantComments := 0

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				wantStatus = statusGen.Draw(rt, "status")
				mgr.UpdateTaskStatus(task, wantStatus)
			case 1:
				wantPriority = priorityGen.Draw(rt, "priority")
				mgr.UpdateTaskPriority(task, wantPriority)
			case 2:
				wantAssignee = models.NewUser(nameGen.Draw(rt, "assignee"))
				mgr.AssignTaskToUser(task, wantAssignee)
			default:
				mgr.AddComment(task, models.NewComment("note"))
				wantComments++
			}
		}

		if task.Status() != wantStatus {
			rt.Fatalf("status = %q, want %q", task.Status(), wantStatus)
		}
		if task.Priority() != wantPriority {
			rt.Fatalf("priority = %q, want %q", task.Priority(), wantPriority)
		}
		if task.Assignee() != wantAssignee {
			rt.Fatalf("assignee = %v, want %v", task.Assignee(), wantAssignee)
		}
		if task.CommentCount() != wantComments {
			rt.Fatalf("comments = %d, want %d", task.CommentCount(), wantComments)
		}
		if task.UpdatedAt().IsZero() {
			rt.Fatal("updatedAt should be set after an update")
		}
	})
}

// TestProperty_SnapshotNeverShrinks verifies that successive snapshots taken
// while inserts are in flight are prefixes of each other.
func TestProperty_SnapshotNeverShrinks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mgr := NewTaskManager()
		n := rapid.IntRange(1, 50).Draw(rt, "inserts")

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < n; i++ {
				mgr.CreateTask(fmt.Sprintf("t%d", i), "", nil)
			}
		}()

		var prev []*models.Task
		for {
			cur := mgr.GetTaskList()
			if len(cur) < len(prev) {
				rt.Fatalf("snapshot shrank from %d to %d", len(prev), len(cur))
			}
			for i := range prev {
				if cur[i] != prev[i] {
					rt.Fatalf("position %d changed between snapshots", i)
				}
			}
			prev = cur
			select {
			case <-done:
				if final := mgr.GetTaskList(); len(final) != n {
					rt.Fatalf("final size %d, want %d", len(final), n)
				}
				return
			default:
			}
		}
	})
}
