// Package core contains the business logic for eztask: the concurrent task
// registry, its process-wide shared instance, task search, configuration
// loading and the simulated workload driver.
package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/valter-silva-au/eztask/pkg/models"
)

// TaskManager defines the operations on the task registry.
//
// The registry's task list is guarded by one reader/writer lock: inserts are
// exclusive, snapshots share. Compound updates lock only the target task and
// never touch the registry lock, so updates to different tasks never contend.
type TaskManager interface {
	// CreateTask builds a task and appends it to the registry.
	CreateTask(title, description string, creator *models.User) *models.Task
	// AddTask appends a task built elsewhere.
	AddTask(task *models.Task)
	// GetTaskList returns a copy of the task list. Membership is frozen at
	// the call; the tasks themselves are shared and stay live.
	GetTaskList() []*models.Task
	// Len returns the number of tasks in the registry.
	Len() int

	AssignTaskToUser(task *models.Task, user *models.User)
	UpdateTaskStatus(task *models.Task, status models.TaskStatus)
	UpdateTaskPriority(task *models.Task, priority models.Priority)
	// AddComment appends comment and sets the task's updated-at to the
	// comment's creation time.
	AddComment(task *models.Task, comment *models.Comment)
}

// Option configures a TaskManager.
type Option func(*taskManager)

// WithEventLogger sends registry events to l. Logging errors are ignored.
func WithEventLogger(l EventLogger) Option {
	return func(tm *taskManager) { tm.events = l }
}

// WithClock replaces the clock used for updated-at timestamps.
func WithClock(now func() time.Time) Option {
	return func(tm *taskManager) { tm.now = now }
}

type taskManager struct {
	mu    sync.RWMutex
	tasks []*models.Task

	events EventLogger
	now    func() time.Time
}

// managersBuilt counts registry constructions.
var managersBuilt atomic.Int64

// NewTaskManager creates an independent registry. Most callers want
// SharedTaskManager instead.
func NewTaskManager(opts ...Option) TaskManager {
	return newTaskManager(opts...)
}

func newTaskManager(opts ...Option) *taskManager {
	managersBuilt.Add(1)
	tm := &taskManager{now: time.Now}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

func (tm *taskManager) CreateTask(title, description string, creator *models.User) *models.Task {
	// Construction touches no shared state.
	task := models.NewTask(title, description, creator)
	tm.insert(task)

	tm.logEvent(EventTaskCreated, map[string]any{
		"task_id": task.ID(),
		"title":   title,
		"creator": userName(creator),
	})
	return task
}

func (tm *taskManager) AddTask(task *models.Task) {
	mustTask(task, "AddTask")
	tm.insert(task)

	tm.logEvent(EventTaskAdded, map[string]any{
		"task_id": task.ID(),
		"title":   task.Title(),
	})
}

func (tm *taskManager) insert(task *models.Task) {
	tm.mu.Lock()
	tm.tasks = append(tm.tasks, task)
	tm.mu.Unlock()
}

func (tm *taskManager) GetTaskList() []*models.Task {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	out := make([]*models.Task, len(tm.tasks))
	copy(out, tm.tasks)
	return out
}

func (tm *taskManager) Len() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tasks)
}

func (tm *taskManager) AssignTaskToUser(task *models.Task, user *models.User) {
	mustTask(task, "AssignTaskToUser")

	var at time.Time
	task.Exclusive(func() {
		at = tm.now()
		task.SetUpdatedAt(at)
		task.SetAssignee(user)
	})

	tm.logEvent(EventTaskAssigned, map[string]any{
		"task_id":     task.ID(),
		"assignee_id": userID(user),
		"assignee":    userName(user),
		"updated_at":  at,
	})
}

func (tm *taskManager) UpdateTaskStatus(task *models.Task, status models.TaskStatus) {
	mustTask(task, "UpdateTaskStatus")

	var at time.Time
	task.Exclusive(func() {
		at = tm.now()
		task.SetUpdatedAt(at)
		task.SetStatus(status)
	})

	tm.logEvent(EventTaskStatusChanged, map[string]any{
		"task_id":    task.ID(),
		"new_status": string(status),
		"updated_at": at,
	})
}

func (tm *taskManager) UpdateTaskPriority(task *models.Task, priority models.Priority) {
	mustTask(task, "UpdateTaskPriority")

	var at time.Time
	task.Exclusive(func() {
		at = tm.now()
		task.SetUpdatedAt(at)
		task.SetPriority(priority)
	})

	tm.logEvent(EventTaskPriorityChanged, map[string]any{
		"task_id":      task.ID(),
		"new_priority": string(priority),
		"updated_at":   at,
	})
}

func (tm *taskManager) AddComment(task *models.Task, comment *models.Comment) {
	mustTask(task, "AddComment")
	if comment == nil {
		panic("core: AddComment called with nil comment")
	}

	task.Exclusive(func() {
		task.SetUpdatedAt(comment.CreatedAt())
		task.AddComment(comment)
	})

	tm.logEvent(EventTaskCommented, map[string]any{
		"task_id":    task.ID(),
		"comment_id": comment.ID(),
		"updated_at": comment.CreatedAt(),
	})
}

// logEvent is called after every lock has been released.
func (tm *taskManager) logEvent(eventType string, data map[string]any) {
	if tm.events == nil {
		return
	}
	_ = tm.events.LogEvent(eventType, data) // Non-fatal.
}

// mustTask panics on a nil task. Passing nil is a programming error, not a
// condition callers are expected to handle.
func mustTask(task *models.Task, op string) {
	if task == nil {
		panic("core: " + op + " called with nil task")
	}
}

func userName(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name()
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID()
}
