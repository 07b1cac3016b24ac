package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/valter-silva-au/eztask/internal/core"
	"github.com/valter-silva-au/eztask/pkg/models"
	"gopkg.in/yaml.v3"
)

func sampleTasks() []*models.Task {
	mgr := core.NewTaskManager()
	alice := models.NewUser("Alice")
	t1 := mgr.CreateTask("Write docs", "Document the API", alice)
	mgr.AssignTaskToUser(t1, models.NewUser("Bob"))
	mgr.UpdateTaskStatus(t1, models.StatusInReview)
	mgr.UpdateTaskPriority(t1, models.PriorityHigh)
	mgr.AddComment(t1, models.NewComment("looks good"))
	mgr.CreateTask("Fix bug", "", alice)
	return mgr.GetTaskList()
}

func TestResolveFormat(t *testing.T) {
	withServices(t)

	tests := []struct {
		name    string
		flag    string
		config  string
		want    string
		wantErr bool
	}{
		{"default", "", "", "table", false},
		{"from config", "", "yaml", "yaml", false},
		{"flag wins", "JSON", "yaml", "json", false},
		{"unknown", "xml", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputFormat = tt.flag
			Cfg.Output.Format = tt.config
			got, err := resolveFormat()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintTasks_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := printTasks(&buf, sampleTasks(), formatTable); err != nil {
		t.Fatalf("printTasks: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"TITLE", "Write docs", "Fix bug", "Alice", "Bob", "in_review", "high", "<unset>"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTasks_YAML(t *testing.T) {
	tasks := sampleTasks()
	var buf bytes.Buffer
	if err := printTasks(&buf, tasks, formatYAML); err != nil {
		t.Fatalf("printTasks: %v", err)
	}

	var decoded []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(decoded))
	}
	if decoded[0]["id"] != tasks[0].ID() || decoded[0]["status"] != "in_review" {
		t.Errorf("unexpected first task %v", decoded[0])
	}
	if _, ok := decoded[1]["status"]; ok {
		t.Errorf("unset status should be omitted, got %v", decoded[1]["status"])
	}
}

func TestPrintTasks_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printTasks(&buf, sampleTasks(), formatJSON); err != nil {
		t.Fatalf("printTasks: %v", err)
	}

	var decoded []models.TaskSnapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Assignee == nil || decoded[0].Assignee.Name != "Bob" {
		t.Fatalf("unexpected decoded tasks %+v", decoded)
	}
	if len(decoded[0].Comments) != 1 || decoded[0].Comments[0].Text != "looks good" {
		t.Errorf("unexpected comments %+v", decoded[0].Comments)
	}
	if !decoded[1].UpdatedAt.IsZero() {
		t.Errorf("untouched task should have no updated_at, got %v", decoded[1].UpdatedAt)
	}
}

func TestPrintTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := printTasks(&buf, nil, formatJSON); err != nil {
		t.Fatalf("printTasks: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

func TestTruncateAndShortID(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "abcd~" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
}
