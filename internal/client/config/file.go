package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathanhfoster/turbo-sub002/internal/timex"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Absent keys
// leave the current value untouched. Durations use timex.Duration, so they
// may be strings like "400ms" or integer nanoseconds.
type FileConfig struct {
	DBPath           *string         `json:"db_path" yaml:"db_path"`
	ExportDir        *string         `json:"export_dir" yaml:"export_dir"`
	SaveDebounce     *timex.Duration `json:"save_debounce" yaml:"save_debounce"`
	OpTimeout        *timex.Duration `json:"op_timeout" yaml:"op_timeout"`
	LogLevel         *string         `json:"log_level" yaml:"log_level"`
	LogFormat        *string         `json:"log_format" yaml:"log_format"`
	SeedWelcomeEntry *bool           `json:"seed_welcome_entry" yaml:"seed_welcome_entry"`
}

// parseFile overlays cfg with a JSON file, or a YAML file when the extension
// is .yaml or .yml.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.ExportDir != nil {
		cfg.ExportDir = *fc.ExportDir
	}
	if fc.SaveDebounce != nil {
		cfg.SaveDebounce = fc.SaveDebounce.Duration
	}
	if fc.OpTimeout != nil {
		cfg.OpTimeout = fc.OpTimeout.Duration
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.SeedWelcomeEntry != nil {
		cfg.SeedWelcomeEntry = *fc.SeedWelcomeEntry
	}
}
