package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/eztask/pkg/models"
)

// ConfigFileName is the name (without extension) of the config file looked
// up in the base directory.
const ConfigFileName = ".eztask"

// ConfigurationManager loads, validates and watches eztask configuration.
type ConfigurationManager interface {
	// Load reads .eztask.yaml (if present) and EZTASK_* variables on top of
	// the defaults, then validates the result.
	Load() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
	// Watch calls onChange with the reloaded config whenever the config file
	// changes. It does nothing when no config file was found by Load.
	Watch(onChange func(*models.Config, error))
	// ConfigFile returns the path of the file Load read, or "".
	ConfigFile() string
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files and environment overrides.
type viperConfigManager struct {
	basePath string
	v        *viper.Viper
	validate *validator.Validate
	watch    sync.Once
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)
	v.SetEnvPrefix("EZTASK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	validate := validator.New()
	// Report keys as they appear in the YAML file.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	// Enum values accept every spelling the parsers accept.
	_ = validate.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTaskStatus(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		_, err := models.ParsePriority(fl.Field().String())
		return err == nil
	})

	return &viperConfigManager{
		basePath: basePath,
		v:        v,
		validate: validate,
	}
}

// DefaultConfig returns the built-in configuration. The workload defaults
// reproduce the classic demo: five tasks created by Alice, each assigned to
// Bob, moved to dev_in_progress at moderate priority, with one comment.
func DefaultConfig() *models.Config {
	return &models.Config{
		Workload: models.WorkloadConfig{
			Tasks:           5,
			Workers:         5,
			CommentsPerTask: 1,
			RatePerSecond:   0,
			Creator:         "Alice",
			Assignees:       []string{"Bob"},
			Statuses:        []string{string(models.StatusDevInProgress)},
			Priorities:      []string{string(models.PriorityModerate)},
		},
		Output: models.OutputConfig{Format: "table"},
		EventLog: models.EventLogConfig{
			Enabled: true,
			Path:    ".eztask_events.jsonl",
		},
		Dashboard: models.DashboardConfig{RefreshInterval: 500 * time.Millisecond},
	}
}

// setDefaults registers every key so that environment overrides are seen by
// Unmarshal even when the key is absent from the file.
func setDefaults(v *viper.Viper, cfg *models.Config) {
	v.SetDefault("workload.tasks", cfg.Workload.Tasks)
	v.SetDefault("workload.workers", cfg.Workload.Workers)
	v.SetDefault("workload.comments_per_task", cfg.Workload.CommentsPerTask)
	v.SetDefault("workload.rate_per_second", cfg.Workload.RatePerSecond)
	v.SetDefault("workload.creator", cfg.Workload.Creator)
	v.SetDefault("workload.assignees", cfg.Workload.Assignees)
	v.SetDefault("workload.statuses", cfg.Workload.Statuses)
	v.SetDefault("workload.priorities", cfg.Workload.Priorities)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("event_log.enabled", cfg.EventLog.Enabled)
	v.SetDefault("event_log.path", cfg.EventLog.Path)
	v.SetDefault("dashboard.refresh_interval", cfg.Dashboard.RefreshInterval)
}

func (cm *viperConfigManager) Load() (*models.Config, error) {
	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
		// No config file found: defaults plus environment.
	}
	return cm.decode()
}

func (cm *viperConfigManager) decode() (*models.Config, error) {
	var cfg models.Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.EventLog.Path != "" && !filepath.IsAbs(cfg.EventLog.Path) {
		cfg.EventLog.Path = filepath.Join(cm.basePath, cfg.EventLog.Path)
	}
	if err := cm.ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig checks cfg against the struct tag rules and reports every
// violation in one error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("validating config: config is nil")
	}
	err := cm.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value())
}

func (cm *viperConfigManager) Watch(onChange func(*models.Config, error)) {
	if cm.v.ConfigFileUsed() == "" {
		return
	}
	cm.watch.Do(func() {
		cm.v.OnConfigChange(func(e fsnotify.Event) {
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				return
			}
			onChange(cm.decode())
		})
		cm.v.WatchConfig()
	})
}

func (cm *viperConfigManager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}
