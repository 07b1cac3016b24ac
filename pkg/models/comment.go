package models

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Comment is an immutable note attached to a task.
type Comment struct {
	id        string
	text      string
	createdAt time.Time
}

// NewComment creates a comment stamped with the current time.
func NewComment(text string) *Comment {
	return &Comment{
		id:        uuid.NewString(),
		text:      text,
		createdAt: time.Now(),
	}
}

// ID returns the comment's unique identifier.
func (c *Comment) ID() string { return c.id }

// Text returns the comment body, which may be empty.
func (c *Comment) Text() string { return c.text }

// CreatedAt returns the time the comment was constructed.
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

func (c *Comment) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Comment{id=%s, text=%q, createdAt=%s}", c.id, c.text, formatTime(c.createdAt))
}

// commentList is an append-only, internally synchronized list of comments.
type commentList struct {
	mu    sync.RWMutex
	items []*Comment
}

func (l *commentList) add(c *Comment) {
	l.mu.Lock()
	l.items = append(l.items, c)
	l.mu.Unlock()
}

// copy returns a point-in-time copy that later appends never touch.
func (l *commentList) copy() []*Comment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Comment, len(l.items))
	copy(out, l.items)
	return out
}

func (l *commentList) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}
