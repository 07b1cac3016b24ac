package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/eztask/internal/core"
	"github.com/valter-silva-au/eztask/pkg/models"
)

// Dashboard panel indices.
const (
	panelTasks = iota
	panelSummary
	panelCount
)

// defaultDashboardRate paces the background workload when the config leaves
// it unlimited, so updates are visible as they happen.
const defaultDashboardRate = 20

type dashboardModel struct {
	activePanel int
	width       int
	height      int
	offset      int

	refresh time.Duration

	tasks       []models.TaskSnapshot
	statusCount map[models.TaskStatus]int
	loadedAt    time.Time

	workloadDone bool
	workloadRes  *core.WorkloadResult
	workloadErr  error

	notice string
	err    error
}

// tickMsg triggers a registry poll.
type tickMsg time.Time

// snapshotMsg carries a fresh registry snapshot.
type snapshotMsg struct {
	tasks []models.TaskSnapshot
	at    time.Time
	err   error
}

// workloadDoneMsg is sent when the background workload finishes.
type workloadDoneMsg struct {
	res *core.WorkloadResult
	err error
}

// configChangedMsg is sent when .eztask.yaml is rewritten.
type configChangedMsg struct {
	cfg *models.Config
	err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activePanelStyle = panelStyle.BorderForeground(lipgloss.Color("62"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusNotPicked  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusReview     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	statusDone       = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(refresh time.Duration) dashboardModel {
	if refresh <= 0 {
		refresh = core.DefaultConfig().Dashboard.RefreshInterval
	}
	return dashboardModel{
		activePanel: panelTasks,
		refresh:     refresh,
		statusCount: make(map[models.TaskStatus]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(loadSnapshot, tick(m.refresh))
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
		case "down", "j":
			if m.offset < len(m.tasks)-1 {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		case "r":
			return m, loadSnapshot
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tea.Batch(loadSnapshot, tick(m.refresh))

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.tasks = msg.tasks
		m.loadedAt = msg.at
		m.statusCount = make(map[models.TaskStatus]int)
		for _, t := range msg.tasks {
			m.statusCount[t.Status]++
		}
		if m.offset >= len(m.tasks) {
			m.offset = max(len(m.tasks)-1, 0)
		}
		return m, nil

	case workloadDoneMsg:
		m.workloadDone = true
		m.workloadRes = msg.res
		m.workloadErr = msg.err
		return m, loadSnapshot

	case configChangedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("config reload failed: %v", msg.err)
			return m, nil
		}
		m.notice = "config reloaded"
		if msg.cfg != nil && msg.cfg.Dashboard.RefreshInterval > 0 {
			m.refresh = msg.cfg.Dashboard.RefreshInterval
			m.notice = fmt.Sprintf("config reloaded, refreshing every %s", m.refresh)
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" eztask dashboard ")
	help := helpStyle.Render("tab: switch panel | j/k: scroll | r: refresh | q: quit")

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  %s\n\n%s", title, errorStyle.Render("Error: "+m.err.Error()), help)
	}

	available := m.width - 2
	var body string
	if available > 110 {
		summaryWidth := 32
		tasks := m.applyPanelStyle(panelTasks, m.renderTasksPanel(), available-summaryWidth-8)
		summary := m.applyPanelStyle(panelSummary, m.renderSummaryPanel(), summaryWidth)
		body = lipgloss.JoinHorizontal(lipgloss.Top, tasks, summary)
	} else {
		width := max(available-4, 20)
		tasks := m.applyPanelStyle(panelTasks, m.renderTasksPanel(), width)
		summary := m.applyPanelStyle(panelSummary, m.renderSummaryPanel(), width)
		body = lipgloss.JoinVertical(lipgloss.Left, tasks, summary)
	}

	footer := help
	if m.notice != "" {
		footer = helpStyle.Render(m.notice) + "\n" + help
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, footer)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

// visibleRows is how many task rows fit on screen.
func (m dashboardModel) visibleRows() int {
	if m.height == 0 {
		return len(m.tasks)
	}
	return max(m.height-12, 3)
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Tasks (%d)", len(m.tasks))))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString("  No tasks yet.")
		return b.String()
	}

	fmt.Fprintf(&b, "  %-12s %-8s %-8s %-16s %-9s %s\n", "TITLE", "CREATOR", "ASSIGNEE", "STATUS", "PRIORITY", "COMMENTS")
	end := min(m.offset+m.visibleRows(), len(m.tasks))
	for _, t := range m.tasks[m.offset:end] {
		row := fmt.Sprintf("  %-12s %-8s %-8s %-16s %-9s %d",
			truncate(t.Title, 12), truncate(refName(t.Creator), 8), truncate(refName(t.Assignee), 8),
			t.Status.String(), t.Priority.String(), len(t.Comments))
		b.WriteString(styleForStatus(t.Status).Render(row))
		b.WriteString("\n")
	}
	if end < len(m.tasks) {
		fmt.Fprintf(&b, "  ... %d more", len(m.tasks)-end)
	}
	return b.String()
}

func (m dashboardModel) renderSummaryPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n")

	for _, s := range append([]models.TaskStatus{models.StatusUnset}, models.AllStatuses()...) {
		label := fmt.Sprintf("  %-16s %d", s.String(), m.statusCount[s])
		b.WriteString(styleForStatus(s).Render(label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case !m.workloadDone:
		b.WriteString("  Workload: running")
	case m.workloadErr != nil:
		b.WriteString(errorStyle.Render("  Workload: " + m.workloadErr.Error()))
	case m.workloadRes != nil:
		fmt.Fprintf(&b, "  Workload: done in %s", m.workloadRes.Elapsed.Round(time.Millisecond))
	default:
		b.WriteString("  Workload: done")
	}
	if !m.loadedAt.IsZero() {
		fmt.Fprintf(&b, "\n  Polled:   %s", m.loadedAt.Format("15:04:05"))
	}
	return b.String()
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusNotPicked:
		return statusNotPicked
	case models.StatusDevInProgress:
		return statusInProgress
	case models.StatusInReview:
		return statusReview
	case models.StatusDone:
		return statusDone
	default:
		return lipgloss.NewStyle()
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "~"
}

// loadSnapshot polls the registry. It never holds the registry lock while
// snapshotting tasks.
func loadSnapshot() tea.Msg {
	if TaskMgr == nil {
		return snapshotMsg{err: fmt.Errorf("task manager not initialized")}
	}
	return snapshotMsg{
		tasks: snapshotAll(TaskMgr.GetTaskList()),
		at:    time.Now(),
	}
}

var dashboardFlags workloadFlags

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live TUI view of the registry while a workload runs",
	Long: `Launch an interactive terminal dashboard. A paced workload mutates the
shared registry in the background while the dashboard polls snapshots of
it. Editing .eztask.yaml while the dashboard runs changes the refresh
interval.

Switch panels with Tab, scroll with j/k, refresh with r, quit with q.
Quitting cancels the workload.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}
		cfg := workloadConfig()
		if cfg.RatePerSecond == 0 {
			cfg.RatePerSecond = defaultDashboardRate
		}
		cfg = dashboardFlags.apply(cfg)
		w, err := core.NewWorkload(TaskMgr, cfg)
		if err != nil {
			return err
		}

		refresh := time.Duration(0)
		if Cfg != nil {
			refresh = Cfg.Dashboard.RefreshInterval
		}
		p := tea.NewProgram(newDashboardModel(refresh), tea.WithAltScreen(), tea.WithContext(commandContext(cmd)))

		ctx, cancel := context.WithCancel(commandContext(cmd))
		defer cancel()
		go func() {
			res, err := w.Run(ctx)
			p.Send(workloadDoneMsg{res: res, err: err})
		}()

		if ConfigMgr != nil {
			ConfigMgr.Watch(func(cfg *models.Config, err error) {
				p.Send(configChangedMsg{cfg: cfg, err: err})
			})
		}

		// A killed program means the command context was cancelled.
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardFlags.register(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}
