package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the diary CLI.
//
// Fields:
//   - DBPath: SQLite database file; parent directories are created on open.
//   - ExportDir: directory export files are written to.
//   - SaveDebounce: quiet period before an edited entry is saved.
//   - OpTimeout: upper bound for a single store operation.
//   - LogLevel, LogFormat: see logging.New.
//   - SeedWelcomeEntry: insert a welcome entry when the database is created.
type Config struct {
	DBPath           string
	ExportDir        string
	SaveDebounce     time.Duration
	OpTimeout        time.Duration
	LogLevel         string
	LogFormat        string
	SeedWelcomeEntry bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "data/diary.db"
	c.ExportDir = "exports"
	c.SaveDebounce = 400 * time.Millisecond
	c.OpTimeout = 5 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.SeedWelcomeEntry = true
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: db path is empty")
	}
	if c.SaveDebounce < 0 {
		return fmt.Errorf("config: save debounce must not be negative, got %s", c.SaveDebounce)
	}
	if c.OpTimeout <= 0 {
		return fmt.Errorf("config: op timeout must be positive, got %s", c.OpTimeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}

// Loader assembles a Config from defaults, environment and an optional file.
type Loader struct {
	// EnvFiles are dotenv files read before the process environment. Missing
	// files are skipped.
	EnvFiles []string
	// Environ replaces os.Environ when set (KEY=VALUE pairs).
	Environ []string
	// ConfigFile is a JSON or YAML file; when empty DIARY_CONFIG is used.
	ConfigFile string
}

// Load applies defaults, then environment variables, then the config file.
// Later sources take precedence over earlier ones.
func (l Loader) Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	env, err := readEnv(l.EnvFiles, l.Environ)
	if err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, env); err != nil {
		return nil, err
	}

	path := l.ConfigFile
	if path == "" {
		path = env[EnvConfig]
	}
	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
