package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvConfig       = "DIARY_CONFIG"
	EnvDBPath       = "DIARY_DB_PATH"
	EnvExportDir    = "DIARY_EXPORT_DIR"
	EnvSaveDebounce = "DIARY_SAVE_DEBOUNCE"
	EnvOpTimeout    = "DIARY_OP_TIMEOUT"
	EnvLogLevel     = "DIARY_LOG_LEVEL"
	EnvLogFormat    = "DIARY_LOG_FORMAT"
	EnvSeedWelcome  = "DIARY_SEED_WELCOME"
)

const envPrefix = "DIARY_"

// readEnv merges DIARY_* variables from dotenv files and the environment.
// The environment wins over files; later files win over earlier ones.
func readEnv(files, environ []string) (map[string]string, error) {
	out := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range m {
			if strings.HasPrefix(k, envPrefix) {
				out[k] = v
			}
		}
	}

	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			out[k] = v
		}
	}
	return out, nil
}

func parseEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[EnvDBPath]; ok {
		cfg.DBPath = v
	}
	if v, ok := env[EnvExportDir]; ok {
		cfg.ExportDir = v
	}
	if v, ok := env[EnvLogLevel]; ok {
		cfg.LogLevel = v
	}
	if v, ok := env[EnvLogFormat]; ok {
		cfg.LogFormat = v
	}
	if v, ok := env[EnvSaveDebounce]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSaveDebounce, err)
		}
		cfg.SaveDebounce = d
	}
	if v, ok := env[EnvOpTimeout]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvOpTimeout, err)
		}
		cfg.OpTimeout = d
	}
	if v, ok := env[EnvSeedWelcome]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSeedWelcome, err)
		}
		cfg.SeedWelcomeEntry = b
	}
	return nil
}
