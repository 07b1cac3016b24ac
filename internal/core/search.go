package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/eztask/pkg/models"
)

// SearchStrategy selects which task field a search compares against. The set
// of strategies is closed; each one expects a specific criteria type and
// reports no match for anything else.
type SearchStrategy int

const (
	// ByCreator expects a *models.User and compares creator names.
	ByCreator SearchStrategy = iota + 1
	// ByAssignee expects a *models.User and compares the current assignee's name.
	ByAssignee
	// ByStatus expects a models.TaskStatus.
	ByStatus
	// ByPriority expects a models.Priority.
	ByPriority
)

var strategyNames = map[SearchStrategy]string{
	ByCreator:  "creator",
	ByAssignee: "assignee",
	ByStatus:   "status",
	ByPriority: "priority",
}

func (s SearchStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SearchStrategy(%d)", int(s))
}

// ParseSearchStrategy maps a field name (creator, assignee, status, priority)
// to its strategy.
func ParseSearchStrategy(name string) (SearchStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown search field %q (want creator, assignee, status or priority)", name)
}

// Matches reports whether task satisfies criteria under this strategy. It
// reads only the task and criteria and never mutates either.
//
// User strategies compare display names, not identities: two distinct users
// named "Alice" match each other, and so do two users named "". A user
// without a name (see models.NewUnnamedUser) never matches.
func (s SearchStrategy) Matches(task *models.Task, criteria any) bool {
	if task == nil {
		return false
	}
	switch s {
	case ByCreator:
		user, ok := criteria.(*models.User)
		return ok && sameName(task.Creator(), user)
	case ByAssignee:
		user, ok := criteria.(*models.User)
		return ok && sameName(task.Assignee(), user)
	case ByStatus:
		status, ok := criteria.(models.TaskStatus)
		return ok && status != models.StatusUnset && task.Status() == status
	case ByPriority:
		priority, ok := criteria.(models.Priority)
		return ok && priority != models.PriorityUnset && task.Priority() == priority
	default:
		return false
	}
}

func sameName(taskUser, criteria *models.User) bool {
	if taskUser == nil || criteria == nil {
		return false
	}
	return taskUser.HasName() && criteria.HasName() && taskUser.Name() == criteria.Name()
}

// TaskSearcher filters task lists with a single strategy.
type TaskSearcher struct {
	strategy SearchStrategy
}

// NewTaskSearcher creates a TaskSearcher for the given strategy.
func NewTaskSearcher(strategy SearchStrategy) *TaskSearcher {
	return &TaskSearcher{strategy: strategy}
}

// Search returns the tasks matching criteria in their original order. The
// input slice is not modified. Pass it a GetTaskList snapshot, never a slice
// another goroutine is appending to.
func (s *TaskSearcher) Search(tasks []*models.Task, criteria any) []*models.Task {
	result := make([]*models.Task, 0)
	for _, task := range tasks {
		if s.strategy.Matches(task, criteria) {
			result = append(result, task)
		}
	}
	return result
}

// Criterion pairs a strategy with the value it compares against.
type Criterion struct {
	Strategy SearchStrategy
	Value    any
}

// ParseCriterion builds a criterion from a field name and a string value,
// converting the value to the type the strategy expects. User values become
// a new, unsaved user with that name, which is enough because user
// strategies compare names.
func ParseCriterion(field, value string) (Criterion, error) {
	strategy, err := ParseSearchStrategy(field)
	if err != nil {
		return Criterion{}, err
	}

	switch strategy {
	case ByCreator, ByAssignee:
		return Criterion{Strategy: strategy, Value: models.NewUser(value)}, nil
	case ByStatus:
		status, err := models.ParseTaskStatus(value)
		if err != nil {
			return Criterion{}, fmt.Errorf("parsing %s criterion: %w", field, err)
		}
		return Criterion{Strategy: strategy, Value: status}, nil
	default:
		priority, err := models.ParsePriority(value)
		if err != nil {
			return Criterion{}, fmt.Errorf("parsing %s criterion: %w", field, err)
		}
		return Criterion{Strategy: strategy, Value: priority}, nil
	}
}

// MatchAll returns the tasks that satisfy every criterion, in their original
// order. With no criteria it returns a copy of tasks.
func MatchAll(tasks []*models.Task, criteria ...Criterion) []*models.Task {
	result := make([]*models.Task, len(tasks))
	copy(result, tasks)
	for _, c := range criteria {
		result = NewTaskSearcher(c.Strategy).Search(result, c.Value)
	}
	return result
}
