package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eztask/internal/observability"
)

var metricsSince string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display registry activity derived from the event log",
	Long: `Display counts derived from the event log: tasks created and added,
assignments per user, status and priority changes, and comments.

The event log accumulates across runs, so these figures cover every
workload run since --since.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (event log may be disabled)")
		}
		format, err := resolveFormat()
		if err != nil {
			return err
		}
		since, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		switch format {
		case formatJSON:
			return writeJSON(out, m)
		case formatYAML:
			return writeYAML(out, m)
		}
		printMetrics(out, m, since)
		return nil
	},
}

func printMetrics(w io.Writer, m *observability.Metrics, since time.Time) {
	fmt.Fprintf(w, "Metrics (since %s)\n\n", since.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  %-24s %d\n", "Events recorded:", m.EventCount)
	fmt.Fprintf(w, "  %-24s %d\n", "Tasks created:", m.TasksCreated)
	fmt.Fprintf(w, "  %-24s %d\n", "Tasks added:", m.TasksAdded)
	fmt.Fprintf(w, "  %-24s %d\n", "Assignments:", m.Assignments)
	fmt.Fprintf(w, "  %-24s %d\n", "Comments:", m.Comments)

	printCounts(w, "Assignments by user:", m.AssignmentsByUser)
	printCounts(w, "Status changes:", m.StatusChanges)
	printCounts(w, "Priority changes:", m.PriorityChanges)

	if m.OldestEvent != nil {
		fmt.Fprintf(w, "\n  %-24s %s\n", "Oldest event:", m.OldestEvent.Format(time.RFC3339))
	}
	if m.NewestEvent != nil {
		fmt.Fprintf(w, "  %-24s %s\n", "Newest event:", m.NewestEvent.Format(time.RFC3339))
	}
}

// printCounts prints counts sorted by key.
func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n  %s\n", title)
	for _, k := range keys {
		label := k
		if label == "" {
			label = "<unset>"
		}
		fmt.Fprintf(w, "    %-20s %d\n", label+":", counts[k])
	}
}

// parseSinceDuration parses "7d", "24h" or "30m" into a time that far in the
// past. An empty string means 7 days.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 24h, 30m)", s)
	}
	return now.Add(-d), nil
}

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 24h, 30m)")
	rootCmd.AddCommand(metricsCmd)
}
