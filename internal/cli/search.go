package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eztask/internal/core"
)

var (
	searchBy    string
	searchValue string
	searchWhere []string
	searchFlags workloadFlags
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run the workload, then search the registry",
	Long: `Run the configured workload, take a snapshot of the registry and print
the tasks matching every criterion.

Criteria are given either as --by FIELD --value VALUE or as one or more
--where FIELD=VALUE flags; all of them must match. FIELD is one of
creator, assignee, status or priority. User fields compare names.`,
	Example: `  eztask search --by creator --value Alice
  eztask search --where assignee=Bob --where status=dev_in_progress`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := parseSearchCriteria(searchBy, searchValue, searchWhere)
		if err != nil {
			return err
		}
		format, err := resolveFormat()
		if err != nil {
			return err
		}
		if _, err := runWorkload(cmd, searchFlags.apply(workloadConfig())); err != nil {
			return err
		}

		matched := core.MatchAll(TaskMgr.GetTaskList(), criteria...)
		out := cmd.OutOrStdout()
		if err := printTasks(out, matched, format); err != nil {
			return err
		}
		if format == formatTable {
			fmt.Fprintf(out, "%d of %d tasks matched\n", len(matched), TaskMgr.Len())
		}
		return nil
	},
}

// parseSearchCriteria builds the criteria list from the --by/--value pair
// and the --where flags.
func parseSearchCriteria(by, value string, where []string) ([]core.Criterion, error) {
	var criteria []core.Criterion
	if by != "" || value != "" {
		if by == "" || value == "" {
			return nil, fmt.Errorf("--by and --value must be given together")
		}
		c, err := core.ParseCriterion(by, value)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	for _, w := range where {
		field, val, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("invalid --where %q (want FIELD=VALUE)", w)
		}
		c, err := core.ParseCriterion(field, val)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	if len(criteria) == 0 {
		return nil, fmt.Errorf("at least one criterion is required (--by/--value or --where)")
	}
	return criteria, nil
}

func init() {
	searchCmd.Flags().StringVar(&searchBy, "by", "", "Field to search: creator, assignee, status or priority")
	searchCmd.Flags().StringVar(&searchValue, "value", "", "Value to compare the field against")
	searchCmd.Flags().StringArrayVar(&searchWhere, "where", nil, "FIELD=VALUE criterion (repeatable)")
	searchFlags.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
