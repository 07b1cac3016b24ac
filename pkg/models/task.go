package models

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task is in its workflow. The zero value
// means the status has never been set.
type TaskStatus string

const (
	StatusUnset         TaskStatus = ""
	StatusNotPicked     TaskStatus = "not_picked"
	StatusDevInProgress TaskStatus = "dev_in_progress"
	StatusInReview      TaskStatus = "in_review"
	StatusDone          TaskStatus = "done"
)

// Priority represents the urgency of a task. The zero value means the
// priority has never been set.
type Priority string

const (
	PriorityUnset    Priority = ""
	PriorityLow      Priority = "low"
	PriorityModerate Priority = "moderate"
	PriorityHigh     Priority = "high"
)

// AllStatuses returns every settable status in workflow order.
func AllStatuses() []TaskStatus {
	return []TaskStatus{StatusNotPicked, StatusDevInProgress, StatusInReview, StatusDone}
}

// AllPriorities returns every settable priority from lowest to highest.
func AllPriorities() []Priority {
	return []Priority{PriorityLow, PriorityModerate, PriorityHigh}
}

// ParseTaskStatus accepts both the stored form (dev_in_progress) and the
// constant form (DEV_IN_PROGRESS).
func ParseTaskStatus(s string) (TaskStatus, error) {
	norm := normalizeEnum(s)
	for _, st := range AllStatuses() {
		if string(st) == norm {
			return st, nil
		}
	}
	return StatusUnset, fmt.Errorf("unknown task status %q", s)
}

// ParsePriority accepts both the stored form (high) and the constant form (HIGH).
func ParsePriority(s string) (Priority, error) {
	norm := normalizeEnum(s)
	for _, p := range AllPriorities() {
		if string(p) == norm {
			return p, nil
		}
	}
	return PriorityUnset, fmt.Errorf("unknown priority %q", s)
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}

func (s TaskStatus) String() string {
	if s == StatusUnset {
		return "<unset>"
	}
	return string(s)
}

func (p Priority) String() string {
	if p == PriorityUnset {
		return "<unset>"
	}
	return string(p)
}

// Task is a unit of work shared between the registry and any caller holding
// a pointer to it.
//
// Identity fields never change after NewTask. Each mutable field is read and
// written atomically on its own; reads of two different fields are not
// consistent with each other. Callers that need a field write and the
// updated-at write to land together wrap them in Exclusive, and readers that
// need a consistent view use Snapshot.
type Task struct {
	id          string
	title       string
	description string
	creator     *User
	createdAt   time.Time

	// updateMu serializes compound updates. It is never held by the
	// single-field accessors below.
	updateMu sync.Mutex

	mu        sync.RWMutex
	assignee  *User
	status    TaskStatus
	priority  Priority
	updatedAt time.Time

	comments commentList
}

// NewTask creates a task with a fresh id. Empty title or description and a
// nil creator are stored as given.
func NewTask(title, description string, creator *User) *Task {
	return &Task{
		id:          uuid.NewString(),
		title:       title,
		description: description,
		creator:     creator,
		createdAt:   time.Now(),
	}
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) Description() string  { return t.description }
func (t *Task) Creator() *User       { return t.creator }
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// SetAssignee replaces the assignee. A nil user clears it.
func (t *Task) SetAssignee(u *User) {
	t.mu.Lock()
	t.assignee = u
	t.mu.Unlock()
}

func (t *Task) SetStatus(s TaskStatus) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

func (t *Task) SetPriority(p Priority) {
	t.mu.Lock()
	t.priority = p
	t.mu.Unlock()
}

func (t *Task) SetUpdatedAt(at time.Time) {
	t.mu.Lock()
	t.updatedAt = at
	t.mu.Unlock()
}

func (t *Task) Assignee() *User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.assignee
}

func (t *Task) Status() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func (t *Task) Priority() Priority {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.priority
}

// UpdatedAt returns the zero time until the first compound update.
func (t *Task) UpdatedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.updatedAt
}

// AddComment appends c. It is safe against concurrent appends and reads and
// does not take the compound update lock.
func (t *Task) AddComment(c *Comment) {
	t.comments.add(c)
}

// Comments returns a copy of the comment list as of the call.
func (t *Task) Comments() []*Comment {
	return t.comments.copy()
}

// CommentCount returns the number of comments appended so far.
func (t *Task) CommentCount() int {
	return t.comments.len()
}

// Exclusive runs fn while holding the task's compound update lock. Two
// Exclusive sections on the same task never overlap; sections on different
// tasks never contend. fn must not call Exclusive or Snapshot on the same
// task.
func (t *Task) Exclusive(fn func()) {
	if t == nil {
		panic("models: Exclusive called on nil *Task")
	}
	t.updateMu.Lock()
	defer t.updateMu.Unlock()
	fn()
}

// UserRef is the rendered form of a user.
type UserRef struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// CommentSnapshot is the rendered form of a comment.
type CommentSnapshot struct {
	ID        string    `yaml:"id" json:"id"`
	Text      string    `yaml:"text" json:"text"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// TaskSnapshot is a consistent copy of a task's state, used for display.
type TaskSnapshot struct {
	ID          string            `yaml:"id" json:"id"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	Creator     *UserRef          `yaml:"creator,omitempty" json:"creator,omitempty"`
	Assignee    *UserRef          `yaml:"assignee,omitempty" json:"assignee,omitempty"`
	Status      TaskStatus        `yaml:"status,omitempty" json:"status,omitempty"`
	Priority    Priority          `yaml:"priority,omitempty" json:"priority,omitempty"`
	CreatedAt   time.Time         `yaml:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `yaml:"updated_at,omitempty" json:"updated_at,omitzero"`
	Comments    []CommentSnapshot `yaml:"comments" json:"comments"`
}

// Snapshot copies the task's state under the compound update lock, so the
// result never shows a field from one compound update next to the updated-at
// of another.
func (t *Task) Snapshot() TaskSnapshot {
	var snap TaskSnapshot
	t.Exclusive(func() {
		t.mu.RLock()
		snap = TaskSnapshot{
			ID:          t.id,
			Title:       t.title,
			Description: t.description,
			Creator:     refOf(t.creator),
			Assignee:    refOf(t.assignee),
			Status:      t.status,
			Priority:    t.priority,
			CreatedAt:   t.createdAt,
			UpdatedAt:   t.updatedAt,
		}
		t.mu.RUnlock()

		comments := t.comments.copy()
		snap.Comments = make([]CommentSnapshot, len(comments))
		for i, c := range comments {
			snap.Comments[i] = CommentSnapshot{ID: c.id, Text: c.text, CreatedAt: c.createdAt}
		}
	})
	return snap
}

func refOf(u *User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.id, Name: u.name}
}

// String renders the task for logs and terminal output. It is not meant to
// be parsed.
func (t *Task) String() string {
	if t == nil {
		return "<nil>"
	}
	snap := t.Snapshot()

	var b strings.Builder
	fmt.Fprintf(&b, "Task{id=%s, title=%q, description=%q", snap.ID, snap.Title, snap.Description)
	fmt.Fprintf(&b, ", assignee=%s, status=%s, priority=%s", snap.Assignee, snap.Status, snap.Priority)
	fmt.Fprintf(&b, ", createdAt=%s, updatedAt=%s", formatTime(snap.CreatedAt), formatTime(snap.UpdatedAt))
	fmt.Fprintf(&b, ", creator=%s, comments=[", snap.Creator)
	for i, c := range snap.Comments {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "Comment{id=%s, text=%q, createdAt=%s}", c.ID, c.Text, formatTime(c.CreatedAt))
	}
	b.WriteString("]}")
	return b.String()
}

func (r *UserRef) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("User{id=%s, name=%q}", r.ID, r.Name)
}

func formatTime(at time.Time) string {
	if at.IsZero() {
		return "<unset>"
	}
	return at.UTC().Format(time.RFC3339Nano)
}
