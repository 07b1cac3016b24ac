package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eztask/internal/core"
	"github.com/valter-silva-au/eztask/pkg/models"
)

// workloadFlags are shared by every command that runs a workload.
type workloadFlags struct {
	tasks    int
	workers  int
	comments int
	rate     float64
}

func (f *workloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.tasks, "tasks", -1, "Number of tasks to create (default from config)")
	cmd.Flags().IntVar(&f.workers, "workers", -1, "Concurrent workers (default from config)")
	cmd.Flags().IntVar(&f.comments, "comments", -1, "Comments per task (default from config)")
	cmd.Flags().Float64Var(&f.rate, "rate", -1, "Registry operations per second, 0 for unlimited (default from config)")
}

// apply overlays the flags that were given on top of cfg.
func (f *workloadFlags) apply(cfg models.WorkloadConfig) models.WorkloadConfig {
	if f.tasks >= 0 {
		cfg.Tasks = f.tasks
	}
	if f.workers >= 0 {
		cfg.Workers = f.workers
	}
	if f.comments >= 0 {
		cfg.CommentsPerTask = f.comments
	}
	if f.rate >= 0 {
		cfg.RatePerSecond = f.rate
	}
	return cfg
}

// runWorkload runs cfg against TaskMgr.
func runWorkload(cmd *cobra.Command, cfg models.WorkloadConfig) (*core.WorkloadResult, error) {
	if TaskMgr == nil {
		return nil, fmt.Errorf("task manager not initialized")
	}
	w, err := core.NewWorkload(TaskMgr, cfg)
	if err != nil {
		return nil, err
	}
	res, err := w.Run(commandContext(cmd))
	if err != nil {
		return res, fmt.Errorf("running workload: %w", err)
	}
	return res, nil
}

func printSummary(w io.Writer, res *core.WorkloadResult) {
	fmt.Fprintf(w, "%d tasks created, %d updates, %d comments in %s\n",
		res.Created, res.Updates, res.Comments, res.Elapsed.Round(time.Microsecond))
}

var demoFlags workloadFlags

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the concurrent workload and print every task",
	Long: `Run the configured workload against the shared registry: create tasks
from a pool of workers, then concurrently assign, update status and
priority, and comment on each of them. Prints the final state of every
task in the registry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat()
		if err != nil {
			return err
		}
		res, err := runWorkload(cmd, demoFlags.apply(workloadConfig()))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := printTasks(out, TaskMgr.GetTaskList(), format); err != nil {
			return err
		}
		if format == formatTable {
			printSummary(out, res)
		}
		return nil
	},
}

func init() {
	demoFlags.register(demoCmd)
	rootCmd.AddCommand(demoCmd)
}
