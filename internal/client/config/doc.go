// Package config loads runtime configuration for the diary CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. DIARY_* variables from a .env file (github.com/joho/godotenv) and
//     the process environment, which wins over the file.
//  3. Optional JSON or YAML file selected with --config/-c or DIARY_CONFIG.
//  4. Command-line flags (see Flags), which override earlier values.
//
// # Environment
//
//	DIARY_DB_PATH        SQLite database path
//	DIARY_EXPORT_DIR     export directory
//	DIARY_SAVE_DEBOUNCE  duration, e.g. 400ms
//	DIARY_OP_TIMEOUT     duration, e.g. 5s
//	DIARY_LOG_LEVEL      debug|info|warn|error
//	DIARY_LOG_FORMAT     text|json
//	DIARY_SEED_WELCOME   true|false
//
// # File schema
//
// The file loader uses timex.Duration for durations, so values can be either
// strings like "400ms" or integer nanoseconds:
//
//	db_path: data/diary.db
//	export_dir: exports
//	save_debounce: 400ms
//	op_timeout: 5s
//	log_level: info
//	log_format: text
//	seed_welcome_entry: true
//
// Primary API
//
//   - type Config: runtime settings.
//   - func (Loader) Load() (*Config, error): defaults, environment, file.
//   - func FromCommand(*cli.Command) (*Config, error): Load plus flags, validated.
package config
