// Package internal provides the App struct that wires the eztask components
// together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valter-silva-au/eztask/internal/cli"
	"github.com/valter-silva-au/eztask/internal/core"
	"github.com/valter-silva-au/eztask/internal/observability"
	"github.com/valter-silva-au/eztask/pkg/models"
)

// App holds the service dependencies of one eztask process.
type App struct {
	BasePath string

	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	TaskMgr core.TaskManager

	// Observability. Both are nil when the event log is disabled or could
	// not be opened.
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp loads configuration from basePath, opens the event log, builds the
// shared task registry and wires the CLI package-level variables.
//
// The registry is process-wide and always logs through one sink. Each NewApp
// points that sink at its own event log (or at none), so the most recent App
// owns the registry's events.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Observability ---
	if cfg.EventLog.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(cfg.EventLog.Path)
		if err != nil {
			// Non-fatal: run without observability.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	registryEvents.attach(app.EventLog)

	// --- Core services ---
	app.TaskMgr = core.SharedTaskManager(core.WithEventLogger(registryEvents))

	// --- Wire CLI package-level variables ---
	cli.TaskMgr = app.TaskMgr
	cli.Cfg = app.Config
	cli.ConfigMgr = app.ConfigMgr
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// If this App's log still receives registry events, the registry stops
// logging until the next NewApp. It is safe to call Close on an App whose
// EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		registryEvents.detach(a.EventLog)
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the eztask base directory. EZTASK_HOME wins;
// otherwise the nearest directory at or above the working directory that
// holds a .eztask.yaml; otherwise the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("EZTASK_HOME"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// registryEvents is the EventLogger the shared registry is built with.
var registryEvents = &eventSink{}

// eventSink adapts a replaceable observability.EventLog to core.EventLogger.
// With no log attached, events are discarded.
type eventSink struct {
	mu  sync.RWMutex
	log observability.EventLog
}

func (s *eventSink) attach(log observability.EventLog) {
	s.mu.Lock()
	s.log = log
	s.mu.Unlock()
}

// detach removes log if it is still the attached one. It waits for writes in
// flight, so log can be closed once detach returns.
func (s *eventSink) detach(log observability.EventLog) {
	s.mu.Lock()
	if s.log == log {
		s.log = nil
	}
	s.mu.Unlock()
}

func (s *eventSink) LogEvent(eventType string, data map[string]any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.log == nil {
		return nil
	}
	return s.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   observability.LevelInfo,
		Type:    eventType,
		Message: eventMessage(eventType, data),
		Data:    data,
	})
}

// eventMessage renders a one-line human summary of a registry event.
func eventMessage(eventType string, data map[string]any) string {
	switch eventType {
	case core.EventTaskCreated, core.EventTaskAdded:
		return fmt.Sprintf("task %v registered", data["title"])
	case core.EventTaskAssigned:
		return fmt.Sprintf("task assigned to %v", data["assignee"])
	case core.EventTaskStatusChanged:
		return fmt.Sprintf("status changed to %v", data["new_status"])
	case core.EventTaskPriorityChanged:
		return fmt.Sprintf("priority changed to %v", data["new_priority"])
	case core.EventTaskCommented:
		return "comment added"
	default:
		return eventType
	}
}
