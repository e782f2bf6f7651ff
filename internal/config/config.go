// Package config resolves process settings from the environment: where the
// data file lives, whether to log debug output, and the HTTP timeout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// AppName is the application name.
	AppName = "dpclient"

	// DataFileName is the data file name inside the home directory.
	DataFileName = ".dpclient"

	// DefaultTimeout bounds each HTTP request to the dotProject server.
	DefaultTimeout = 30 * time.Second

	// EnvFile overrides the data file path.
	EnvFile = "DPCLIENT_FILE"

	// EnvDebug enables debug logging.
	EnvDebug = "DPCLIENT_DEBUG"

	// EnvTimeout overrides the HTTP timeout (a Go duration such as "45s").
	EnvTimeout = "DPCLIENT_TIMEOUT"
)

// Config holds process settings.
type Config struct {
	// Path is the data file path.
	Path string

	// Debug enables debug logging.
	Debug bool

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv to look up variables.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Path:    getenv(EnvFile),
		Timeout: DefaultTimeout,
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath()
	}

	if v := getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", EnvDebug, v)
		}
		cfg.Debug = debug
	}

	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: invalid duration %q", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// DefaultPath returns $HOME/.dpclient.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return DataFileName
	}
	return filepath.Join(home, DataFileName)
}
