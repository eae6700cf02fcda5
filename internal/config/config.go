// Package config loads per-application framework settings.
//
// Values are layered the same way for every application: defaults, then
// <APP>_* environment variables, then the optional TOML file named by
// <APP>_CONFIG, then the environment again so it always wins, then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Keys understood by the loader.
const (
	KeyComplete           = "complete"
	KeyActiveHelp         = "active_help"
	KeyCompletionTimeout  = "completion_timeout"
	KeySuggestionDistance = "suggestion_distance"
	KeyLogFile            = "log_file"
	KeyLogLevel           = "log_level"
	KeyConfig             = "config"
)

// FileExtTOML is the only supported configuration file extension.
const FileExtTOML = ".toml"

// EnvPrefix returns the environment variable prefix for app, e.g. "kube-ctl" -> "KUBE_CTL_".
func EnvPrefix(app string) string {
	return EnvName(app) + "_"
}

// EnvName upper-cases app and replaces every character that is not a letter or digit with '_'.
func EnvName(app string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(app) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "APP"
	}
	return b.String()
}

// Loader resolves settings for one application. A Loader is not safe for concurrent Load calls.
type Loader struct {
	prefix     string
	defaults   map[string]string
	validators map[string]Validator
	values     map[string]string
	warnings   []string
}

// NewLoader creates a loader for app with the framework defaults and validators registered.
func NewLoader(app string) *Loader {
	l := &Loader{
		prefix:     EnvPrefix(app),
		defaults:   make(map[string]string),
		validators: make(map[string]Validator),
	}
	l.setDefaults()
	l.initValidators()
	return l
}

// RegisterValidator registers a validator for a configuration key.
// Panics if a validator is already registered for the key.
func (l *Loader) RegisterValidator(key string, validator Validator) {
	if _, exists := l.validators[key]; exists {
		panic(fmt.Sprintf("validator already registered for key: %s", key))
	}
	l.validators[key] = validator
}

// SetDefault sets the default for key.
func (l *Loader) SetDefault(key, value string) {
	l.defaults[key] = value
}

func (l *Loader) setDefaults() {
	l.SetDefault(KeyComplete, "")
	l.SetDefault(KeyActiveHelp, "true")
	l.SetDefault(KeyCompletionTimeout, "0s")
	l.SetDefault(KeySuggestionDistance, "2")
	l.SetDefault(KeyLogFile, "")
	l.SetDefault(KeyLogLevel, "debug")
}

func (l *Loader) initValidators() {
	l.RegisterValidator(KeyComplete, EnumValidator(map[string]bool{"bash": true, "zsh": true, "fish": true}))
	l.RegisterValidator(KeyActiveHelp, BoolValidator())
	l.RegisterValidator(KeyCompletionTimeout, DurationValidator())
	l.RegisterValidator(KeySuggestionDistance, PositiveIntValidator())
	l.RegisterValidator(KeyLogLevel, EnumValidator(map[string]bool{"debug": true, "info": true, "warn": true, "error": true}))
}

// Load resolves the configuration from environ (os.Environ format) and the optional file.
func (l *Loader) Load(environ []string) Settings {
	l.values = make(map[string]string, len(l.defaults))
	l.warnings = nil
	for k, v := range l.defaults {
		l.values[k] = v
	}

	l.loadFromEnv(environ)
	l.loadFromFile()
	l.loadFromEnv(environ)
	l.validate()

	return l.settings()
}

func (l *Loader) loadFromEnv(environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], l.prefix))
		l.values[key] = parts[1]
	}
}

func (l *Loader) loadFromFile() {
	path := l.values[KeyConfig]
	if path == "" {
		return
	}
	if !strings.EqualFold(filepath.Ext(path), FileExtTOML) {
		l.warn("unsupported config file %s: only %s is supported", path, FileExtTOML)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.warn("unable to read config file %s: %v", path, err)
		return
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		l.warn("unable to parse config file %s: %v", path, err)
		return
	}
	for k, v := range raw {
		key := strings.ToLower(k)
		converted, ok := coerceConfigValue(v)
		if !ok {
			l.warn("unsupported config value type for %s: %T", key, v)
			continue
		}
		l.values[key] = converted
	}
}

// coerceConfigValue converts a decoded TOML value to its string representation.
func coerceConfigValue(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}

func (l *Loader) validate() {
	for key, value := range l.values {
		validator := l.validators[key]
		if validator == nil {
			continue
		}
		normalized, err := validator(key, value, l.defaults[key])
		if err != nil {
			l.warnings = append(l.warnings, err.Error())
		}
		l.values[key] = normalized
	}
}

func (l *Loader) warn(format string, args ...any) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

// Get returns a loaded value or defaultValue.
func (l *Loader) Get(key, defaultValue string) string {
	if val, ok := l.values[key]; ok {
		return val
	}
	return defaultValue
}

// GetInt returns a loaded value as integer, or defaultValue.
func (l *Loader) GetInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(l.Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a loaded value as boolean, or defaultValue.
func (l *Loader) GetBool(key string, defaultValue bool) bool {
	switch normalizeBool(l.Get(key, "")) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

// GetDuration returns a loaded value as duration, or defaultValue.
func (l *Loader) GetDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := parseDuration(l.Get(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
