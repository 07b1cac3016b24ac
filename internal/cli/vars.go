package cli

import (
	"github.com/valter-silva-au/eztask/internal/core"
	"github.com/valter-silva-au/eztask/internal/observability"
	"github.com/valter-silva-au/eztask/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	TaskMgr   core.TaskManager
	Cfg       *models.Config
	ConfigMgr core.ConfigurationManager
)

// Observability service instances. Both are nil when the event log is
// disabled.
var (
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)

// workloadConfig returns the configured workload, or the built-in one when
// no config has been loaded.
func workloadConfig() models.WorkloadConfig {
	if Cfg == nil {
		return core.DefaultConfig().Workload
	}
	return Cfg.Workload
}
