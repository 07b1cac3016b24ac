package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/valter-silva-au/eztask/pkg/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// WorkloadResult summarises a workload run.
type WorkloadResult struct {
	Tasks    []*models.Task
	Created  int64
	Updates  int64
	Comments int64
	Elapsed  time.Duration
}

// Workload drives concurrent traffic against a TaskManager: it creates
// tasks from a bounded pool of goroutines, then concurrently assigns,
// re-status, re-prioritises and comments on each of them.
type Workload struct {
	mgr      TaskManager
	cfg      models.WorkloadConfig
	creator  *models.User
	assignee []*models.User
	statuses []models.TaskStatus
	priority []models.Priority
	limiter  *rate.Limiter
}

// NewWorkload validates the string values in cfg and prepares the users the
// workload acts as.
func NewWorkload(mgr TaskManager, cfg models.WorkloadConfig) (*Workload, error) {
	if mgr == nil {
		return nil, fmt.Errorf("creating workload: task manager is nil")
	}
	if cfg.Tasks < 0 {
		return nil, fmt.Errorf("creating workload: tasks must not be negative, got %d", cfg.Tasks)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("creating workload: workers must be at least 1, got %d", cfg.Workers)
	}
	if len(cfg.Assignees) == 0 || len(cfg.Statuses) == 0 || len(cfg.Priorities) == 0 {
		return nil, fmt.Errorf("creating workload: assignees, statuses and priorities must not be empty")
	}

	w := &Workload{
		mgr:     mgr,
		cfg:     cfg,
		creator: models.NewUser(cfg.Creator),
	}
	for _, name := range cfg.Assignees {
		w.assignee = append(w.assignee, models.NewUser(name))
	}
	for _, s := range cfg.Statuses {
		status, err := models.ParseTaskStatus(s)
		if err != nil {
			return nil, fmt.Errorf("creating workload: %w", err)
		}
		w.statuses = append(w.statuses, status)
	}
	for _, p := range cfg.Priorities {
		priority, err := models.ParsePriority(p)
		if err != nil {
			return nil, fmt.Errorf("creating workload: %w", err)
		}
		w.priority = append(w.priority, priority)
	}
	if cfg.RatePerSecond > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return w, nil
}

// Run executes both phases and returns once every operation has finished or
// ctx is done. Cancellation is checked between registry operations; an
// operation that has started always completes.
func (w *Workload) Run(ctx context.Context) (*WorkloadResult, error) {
	start := time.Now()
	res := &WorkloadResult{}
	var created, updates, comments atomic.Int64

	tasks := make([]*models.Task, w.cfg.Tasks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Workers)
	for i := range tasks {
		i := i
		g.Go(func() error {
			if err := w.wait(gctx); err != nil {
				return err
			}
			n := i + 1
			tasks[i] = w.mgr.CreateTask(
				fmt.Sprintf("Task %d", n),
				fmt.Sprintf("Description for task %d", n),
				w.creator,
			)
			created.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		res.Tasks = compact(tasks)
		res.Created = created.Load()
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("creating tasks: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			steps := []func(){
				func() { w.mgr.AssignTaskToUser(task, w.assignee[i%len(w.assignee)]) },
				func() { w.mgr.UpdateTaskStatus(task, w.statuses[i%len(w.statuses)]) },
				func() { w.mgr.UpdateTaskPriority(task, w.priority[i%len(w.priority)]) },
			}
			for _, step := range steps {
				if err := w.wait(gctx); err != nil {
					return err
				}
				step()
				updates.Add(1)
			}
			for c := 0; c < w.cfg.CommentsPerTask; c++ {
				if err := w.wait(gctx); err != nil {
					return err
				}
				w.mgr.AddComment(task, models.NewComment("Concurrent comment"))
				comments.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	res.Tasks = tasks
	res.Created = created.Load()
	res.Updates = updates.Load()
	res.Comments = comments.Load()
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, fmt.Errorf("updating tasks: %w", err)
	}
	return res, nil
}

// wait blocks until the limiter admits one more operation.
func (w *Workload) wait(ctx context.Context) error {
	if w.limiter == nil {
		return ctx.Err()
	}
	return w.limiter.Wait(ctx)
}

func compact(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
