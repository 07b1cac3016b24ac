package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/valter-silva-au/eztask/pkg/models"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// resolveFormat picks the --format flag, then the configured format, then
// table.
func resolveFormat() (string, error) {
	f := strings.ToLower(strings.TrimSpace(outputFormat))
	if f == "" && Cfg != nil {
		f = Cfg.Output.Format
	}
	if f == "" {
		f = formatTable
	}
	switch f {
	case formatTable, formatYAML, formatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (use table, yaml or json)", f)
}

// snapshotAll takes a consistent snapshot of every task. Each task is
// snapshotted on its own, so two tasks may reflect different moments.
func snapshotAll(tasks []*models.Task) []models.TaskSnapshot {
	out := make([]models.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Snapshot())
	}
	return out
}

// printTasks renders tasks to w in the given format.
func printTasks(w io.Writer, tasks []*models.Task, format string) error {
	snaps := snapshotAll(tasks)
	switch format {
	case formatYAML:
		return writeYAML(w, snaps)
	case formatJSON:
		return writeJSON(w, snaps)
	default:
		_, err := fmt.Fprintln(w, renderTaskTable(snaps))
		return err
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("formatting as YAML: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func renderTaskTable(snaps []models.TaskSnapshot) string {
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			shortID(s.ID),
			s.Title,
			refName(s.Creator),
			refName(s.Assignee),
			s.Status.String(),
			s.Priority.String(),
			strconv.Itoa(len(s.Comments)),
			displayTime(s.UpdatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CREATOR", "ASSIGNEE", "STATUS", "PRIORITY", "COMMENTS", "UPDATED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return t.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func refName(r *models.UserRef) string {
	if r == nil || r.Name == "" {
		return "-"
	}
	return r.Name
}

func displayTime(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.UTC().Format("15:04:05.000000")
}
