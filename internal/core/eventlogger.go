package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types emitted by the task registry.
const (
	EventTaskCreated         = "task.created"
	EventTaskAdded           = "task.added"
	EventTaskAssigned        = "task.assigned"
	EventTaskStatusChanged   = "task.status_changed"
	EventTaskPriorityChanged = "task.priority_changed"
	EventTaskCommented       = "task.commented"
)
