package logging

import (
	"os"
	"path/filepath"
)

// Config holds logging configuration.
type Config struct {
	// Enabled determines whether logging is active.
	Enabled bool
	// Level is the minimum log level to record.
	Level string
	// Path is the file that receives log entries.
	Path string
	// Command is the name of the application being executed.
	Command string
	// PID is the process ID.
	PID int
}

// DefaultConfig returns a disabled Config for the current process.
func DefaultConfig() Config {
	return Config{
		Enabled: false,
		Level:   "debug",
		Command: filepath.Base(os.Args[0]),
		PID:     os.Getpid(),
	}
}

// FileConfig returns a Config that logs to path when path is non-empty.
func FileConfig(command, path, level string) Config {
	cfg := DefaultConfig()
	if command != "" {
		cfg.Command = command
	}
	if level != "" {
		cfg.Level = level
	}
	cfg.Path = path
	cfg.Enabled = path != ""
	return cfg
}
