package observability

import (
	"fmt"
	"time"
)

// Metrics summarises registry activity recorded in the event log.
type Metrics struct {
	TasksCreated      int            `json:"tasks_created" yaml:"tasks_created"`
	TasksAdded        int            `json:"tasks_added" yaml:"tasks_added"`
	Assignments       int            `json:"assignments" yaml:"assignments"`
	AssignmentsByUser map[string]int `json:"assignments_by_user" yaml:"assignments_by_user"`
	StatusChanges     map[string]int `json:"status_changes" yaml:"status_changes"`
	PriorityChanges   map[string]int `json:"priority_changes" yaml:"priority_changes"`
	Comments          int            `json:"comments" yaml:"comments"`
	EventCount        int            `json:"event_count" yaml:"event_count"`
	OldestEvent       *time.Time     `json:"oldest_event,omitempty" yaml:"oldest_event,omitempty"`
	NewestEvent       *time.Time     `json:"newest_event,omitempty" yaml:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator returns a MetricsCalculator reading from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event at or after since. Event types are the
// ones emitted by the task registry; anything else only counts towards
// EventCount and the time range.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		AssignmentsByUser: make(map[string]int),
		StatusChanges:     make(map[string]int),
		PriorityChanges:   make(map[string]int),
		EventCount:        len(events),
	}
	for _, e := range events {
		at := e.Time
		if m.OldestEvent == nil || at.Before(*m.OldestEvent) {
			m.OldestEvent = &at
		}
		if m.NewestEvent == nil || at.After(*m.NewestEvent) {
			m.NewestEvent = &at
		}

		switch e.Type {
		case "task.created":
			m.TasksCreated++
		case "task.added":
			m.TasksAdded++
		case "task.assigned":
			m.Assignments++
			if name, ok := e.Data["assignee"].(string); ok && name != "" {
				m.AssignmentsByUser[name]++
			}
		case "task.status_changed":
			if s, ok := e.Data["new_status"].(string); ok {
				m.StatusChanges[s]++
			}
		case "task.priority_changed":
			if p, ok := e.Data["new_priority"].(string); ok {
				m.PriorityChanges[p]++
			}
		case "task.commented":
			m.Comments++
		}
	}
	return m, nil
}
