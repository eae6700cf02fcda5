package flagtree

import (
	"github.com/cristianoliveira/flagtree/internal/config"
	"github.com/cristianoliveira/flagtree/internal/logging"
)

// Settings is the framework configuration resolved from <APP>_* environment
// variables and the optional TOML file named by <APP>_CONFIG.
type Settings = config.Settings

// Logger is the structured logger used for framework diagnostics.
type Logger = logging.Logger

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return config.Default()
}

// LoadSettings resolves the settings of the application named app from environ.
func LoadSettings(app string, environ []string) Settings {
	return config.Load(app, environ)
}

// NewJSONLogger returns a Logger writing JSON lines to the file at path.
func NewJSONLogger(app, path, level string) (Logger, error) {
	return logging.New(logging.FileConfig(app, path, level))
}

// EnvName returns the environment variable stem of app, e.g. "kube-ctl" -> "KUBE_CTL".
func EnvName(app string) string {
	return config.EnvName(app)
}

func nopLogger() Logger {
	return logging.Noop()
}
