package core

import (
	"context"
	"testing"
	"time"

	"github.com/valter-silva-au/eztask/pkg/models"
)

func TestNewWorkload_Errors(t *testing.T) {
	good := DefaultConfig().Workload

	tests := []struct {
		name   string
		mgr    TaskManager
		mutate func(*models.WorkloadConfig)
	}{
		{"nil manager", nil, func(*models.WorkloadConfig) {}},
		{"negative tasks", NewTaskManager(), func(c *models.WorkloadConfig) { c.Tasks = -1 }},
		{"no workers", NewTaskManager(), func(c *models.WorkloadConfig) { c.Workers = 0 }},
		{"no assignees", NewTaskManager(), func(c *models.WorkloadConfig) { c.Assignees = nil }},
		{"bad status", NewTaskManager(), func(c *models.WorkloadConfig) { c.Statuses = []string{"blocked"} }},
		{"bad priority", NewTaskManager(), func(c *models.WorkloadConfig) { c.Priorities = []string{"urgent"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := good
			cfg.Assignees = append([]string(nil), good.Assignees...)
			tt.mutate(&cfg)
			if _, err := NewWorkload(tt.mgr, cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWorkload_DefaultDemo(t *testing.T) {
	mgr := NewTaskManager()
	w, err := NewWorkload(mgr, DefaultConfig().Workload)
	if err != nil {
		t.Fatalf("NewWorkload: %v", err)
	}

	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Created != 5 || res.Updates != 15 || res.Comments != 5 {
		t.Errorf("unexpected counts: created=%d updates=%d comments=%d", res.Created, res.Updates, res.Comments)
	}
	if mgr.Len() != 5 {
		t.Fatalf("expected 5 tasks, got %d", mgr.Len())
	}
	for _, task := range mgr.GetTaskList() {
		if task.Creator().Name() != "Alice" {
			t.Errorf("%s: creator %s", task.Title(), task.Creator().Name())
		}
		if task.Assignee() == nil || task.Assignee().Name() != "Bob" {
			t.Errorf("%s: expected Bob as assignee", task.Title())
		}
		if task.Status() != models.StatusDevInProgress || task.Priority() != models.PriorityModerate {
			t.Errorf("%s: status %s priority %s", task.Title(), task.Status(), task.Priority())
		}
		if task.CommentCount() != 1 {
			t.Errorf("%s: expected 1 comment, got %d", task.Title(), task.CommentCount())
		}
	}
}

func TestWorkload_RoundRobinValues(t *testing.T) {
	mgr := NewTaskManager()
	cfg := DefaultConfig().Workload
	cfg.Tasks = 6
	cfg.Workers = 3
	cfg.CommentsPerTask = 0
	cfg.Assignees = []string{"Bob", "Eve"}
	cfg.Statuses = []string{"not_picked", "in_review", "done"}
	cfg.Priorities = []string{"low", "high"}

	w, err := NewWorkload(mgr, cfg)
	if err != nil {
		t.Fatalf("NewWorkload: %v", err)
	}
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// res.Tasks is in creation index order regardless of registry order.
	for i, task := range res.Tasks {
		if got, want := task.Assignee().Name(), cfg.Assignees[i%2]; got != want {
			t.Errorf("task %d: assignee %s, want %s", i, got, want)
		}
		if got, want := string(task.Status()), cfg.Statuses[i%3]; got != want {
			t.Errorf("task %d: status %s, want %s", i, got, want)
		}
		if got, want := string(task.Priority()), cfg.Priorities[i%2]; got != want {
			t.Errorf("task %d: priority %s, want %s", i, got, want)
		}
		if task.CommentCount() != 0 {
			t.Errorf("task %d: expected no comments", i)
		}
	}
}

func TestWorkload_ZeroTasks(t *testing.T) {
	cfg := DefaultConfig().Workload
	cfg.Tasks = 0
	w, err := NewWorkload(NewTaskManager(), cfg)
	if err != nil {
		t.Fatalf("NewWorkload: %v", err)
	}
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Created != 0 || len(res.Tasks) != 0 {
		t.Errorf("expected an empty run, got %+v", res)
	}
}

func TestWorkload_Cancelled(t *testing.T) {
	mgr := NewTaskManager()
	cfg := DefaultConfig().Workload
	cfg.Tasks = 1000
	cfg.Workers = 2
	cfg.RatePerSecond = 20

	w, err := NewWorkload(mgr, cfg)
	if err != nil {
		t.Fatalf("NewWorkload: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	res, err := w.Run(ctx)
	if err == nil {
		t.Fatal("expected the run to be cut short")
	}
	if res.Created >= int64(cfg.Tasks) {
		t.Errorf("expected fewer than %d tasks, got %d", cfg.Tasks, res.Created)
	}
	if int64(mgr.Len()) != res.Created || int64(len(res.Tasks)) != res.Created {
		t.Errorf("registry has %d tasks, result reports %d created and %d returned", mgr.Len(), res.Created, len(res.Tasks))
	}
}
