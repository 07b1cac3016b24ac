package models

import "time"

// Config holds the settings read from .eztask.yaml and EZTASK_* environment
// variables via Viper.
type Config struct {
	Workload  WorkloadConfig  `yaml:"workload" json:"workload" mapstructure:"workload"`
	Output    OutputConfig    `yaml:"output" json:"output" mapstructure:"output"`
	EventLog  EventLogConfig  `yaml:"event_log" json:"event_log" mapstructure:"event_log"`
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard" mapstructure:"dashboard"`
}

// WorkloadConfig describes the simulated concurrent workload run by the
// demo, search and dashboard commands. Task i is assigned
// Assignees[i%len], Statuses[i%len] and Priorities[i%len].
type WorkloadConfig struct {
	Tasks           int      `yaml:"tasks" json:"tasks" mapstructure:"tasks" validate:"gte=0,lte=100000"`
	Workers         int      `yaml:"workers" json:"workers" mapstructure:"workers" validate:"gte=1,lte=1024"`
	CommentsPerTask int      `yaml:"comments_per_task" json:"comments_per_task" mapstructure:"comments_per_task" validate:"gte=0,lte=1000"`
	RatePerSecond   float64  `yaml:"rate_per_second" json:"rate_per_second" mapstructure:"rate_per_second" validate:"gte=0"`
	Creator         string   `yaml:"creator" json:"creator" mapstructure:"creator" validate:"required"`
	Assignees       []string `yaml:"assignees" json:"assignees" mapstructure:"assignees" validate:"min=1,dive,required"`
	Statuses        []string `yaml:"statuses" json:"statuses" mapstructure:"statuses" validate:"min=1,dive,task_status"`
	Priorities      []string `yaml:"priorities" json:"priorities" mapstructure:"priorities" validate:"min=1,dive,task_priority"`
}

// OutputConfig controls how task lists are printed.
type OutputConfig struct {
	Format string `yaml:"format" json:"format" mapstructure:"format" validate:"oneof=table yaml json"`
}

// EventLogConfig controls the JSONL event log. A relative Path is resolved
// against the base directory.
type EventLogConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" json:"path" mapstructure:"path" validate:"required_if=Enabled true"`
}

// DashboardConfig holds TUI settings.
type DashboardConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" mapstructure:"refresh_interval" validate:"gte=50ms"`
}
