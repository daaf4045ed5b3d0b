package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override values from config.toml.
const (
	EnvAPIURL   = "FLIX_API_URL"
	EnvAppToken = "FLIX_APP_TOKEN"
	EnvDBPath   = "FLIX_DB_PATH"
	EnvLogLevel = "FLIX_LOG_LEVEL"
)

// LoadEnv loads the given dotenv files into the process environment.
//
// Missing files are skipped; variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv copies non-empty FLIX_* variables onto c.
func ApplyEnv(c *Config) {
	if v := envValue(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := envValue(EnvAppToken); v != "" {
		c.API.AppToken = v
	}
	if v := envValue(EnvDBPath); v != "" {
		c.Database.Path = v
	}
	if v := envValue(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
