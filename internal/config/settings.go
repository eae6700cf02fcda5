package config

import "time"

// Settings is the resolved framework configuration of one application.
type Settings struct {
	// Shell is the completion dialect requested through <APP>_COMPLETE.
	Shell string
	// ActiveHelp enables contextual help lines in completion output.
	ActiveHelp bool
	// CompletionTimeout bounds every dynamic completion callback. Zero disables the guard.
	CompletionTimeout time.Duration
	// SuggestionDistance is the maximum edit distance of "did you mean" suggestions.
	SuggestionDistance int
	// LogFile receives debug logs when set.
	LogFile string
	// LogLevel is the minimum level written to LogFile.
	LogLevel string
	// ConfigFile is the TOML file that was consulted, if any.
	ConfigFile string
	// Warnings lists invalid values that were replaced by defaults.
	Warnings []string
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		ActiveHelp:         true,
		SuggestionDistance: 2,
		LogLevel:           "debug",
	}
}

// Load resolves the settings of app from environ.
func Load(app string, environ []string) Settings {
	return NewLoader(app).Load(environ)
}

func (l *Loader) settings() Settings {
	def := Default()
	return Settings{
		Shell:              l.Get(KeyComplete, ""),
		ActiveHelp:         l.GetBool(KeyActiveHelp, def.ActiveHelp),
		CompletionTimeout:  l.GetDuration(KeyCompletionTimeout, 0),
		SuggestionDistance: l.GetInt(KeySuggestionDistance, def.SuggestionDistance),
		LogFile:            l.Get(KeyLogFile, ""),
		LogLevel:           l.Get(KeyLogLevel, def.LogLevel),
		ConfigFile:         l.Get(KeyConfig, ""),
		Warnings:           append([]string(nil), l.warnings...),
	}
}
