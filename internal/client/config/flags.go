package config

import (
	"github.com/urfave/cli/v3"
)

// Flag names shared by every diary command.
const (
	FlagConfig       = "config"
	FlagDBPath       = "db"
	FlagExportDir    = "export-dir"
	FlagSaveDebounce = "save-debounce"
	FlagOpTimeout    = "op-timeout"
	FlagLogLevel     = "log-level"
	FlagLogFormat    = "log-format"
	FlagNoWelcome    = "no-welcome"
)

// Flags returns the global flags. Values left unset on the command line do
// not override other sources.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: FlagConfig, Aliases: []string{"c"}, Usage: "JSON or YAML config file", TakesFile: true},
		&cli.StringFlag{Name: FlagDBPath, Usage: "SQLite database path", TakesFile: true},
		&cli.StringFlag{Name: FlagExportDir, Usage: "directory for exported files"},
		&cli.DurationFlag{Name: FlagSaveDebounce, Usage: "quiet period before an edit is saved"},
		&cli.DurationFlag{Name: FlagOpTimeout, Usage: "timeout of a single store operation"},
		&cli.StringFlag{Name: FlagLogLevel, Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: FlagLogFormat, Usage: "text or json"},
		&cli.BoolFlag{Name: FlagNoWelcome, Usage: "do not seed a welcome entry into a new database"},
	}
}

// FromCommand loads the configuration for cmd: defaults, .env and DIARY_*
// variables, the config file, then the flags set on the command line.
func FromCommand(cmd *cli.Command) (*Config, error) {
	cfg, err := Loader{
		EnvFiles:   []string{".env"},
		ConfigFile: cmd.String(FlagConfig),
	}.Load()
	if err != nil {
		return nil, err
	}

	parseFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseFlags overlays the flags that were explicitly set.
func parseFlags(cmd *cli.Command, cfg *Config) {
	if cmd.IsSet(FlagDBPath) {
		cfg.DBPath = cmd.String(FlagDBPath)
	}
	if cmd.IsSet(FlagExportDir) {
		cfg.ExportDir = cmd.String(FlagExportDir)
	}
	if cmd.IsSet(FlagSaveDebounce) {
		cfg.SaveDebounce = cmd.Duration(FlagSaveDebounce)
	}
	if cmd.IsSet(FlagOpTimeout) {
		cfg.OpTimeout = cmd.Duration(FlagOpTimeout)
	}
	if cmd.IsSet(FlagLogLevel) {
		cfg.LogLevel = cmd.String(FlagLogLevel)
	}
	if cmd.IsSet(FlagLogFormat) {
		cfg.LogFormat = cmd.String(FlagLogFormat)
	}
	if cmd.IsSet(FlagNoWelcome) {
		cfg.SeedWelcomeEntry = !cmd.Bool(FlagNoWelcome)
	}
}
