package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Validator validates and normalizes a configuration value.
// On failure it returns the value to fall back to together with an error describing the problem.
type Validator func(key, value, defaultValue string) (normalized string, err error)

// PositiveIntValidator returns a validator that ensures a value is a positive integer.
func PositiveIntValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return defaultValue, fmt.Errorf("invalid %s value '%s': must be a positive integer, using default: %s", key, value, defaultValue)
		}
		return strconv.Itoa(n), nil
	}
}

// EnumValidator returns a validator that ensures a value is one of the allowed enum values.
func EnumValidator(allowed map[string]bool) Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		valueLower := strings.ToLower(value)
		if !allowed[valueLower] {
			return defaultValue, fmt.Errorf("invalid %s value '%s': must be one of: %s; using default: %s", key, value, allowedValues(allowed), defaultValue)
		}
		return valueLower, nil
	}
}

// BoolValidator returns a validator that normalizes boolean spellings to "true"/"false".
func BoolValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		normalized := normalizeBool(value)
		if normalized != "true" && normalized != "false" {
			return defaultValue, fmt.Errorf("invalid boolean value for %s: '%s', must be one of: 1, true, yes, on, 0, false, no, off; using default: %s", key, value, defaultValue)
		}
		return normalized, nil
	}
}

// DurationValidator accepts Go duration strings ("2s", "150ms") or a bare
// integer number of milliseconds. Zero is allowed and negative values are not.
func DurationValidator() Validator {
	return func(key, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		d, err := parseDuration(value)
		if err != nil || d < 0 {
			return defaultValue, fmt.Errorf("invalid %s value '%s': must be a non-negative duration such as 500ms or 2s, using default: %s", key, value, defaultValue)
		}
		return d.String(), nil
	}
}

func parseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(value)
}

// normalizeBool converts various boolean representations to "true"/"false".
func normalizeBool(val string) string {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return "true"
	case "0", "false", "no", "off":
		return "false"
	default:
		return val
	}
}

// allowedValues returns a sorted comma-separated list of allowed values.
func allowedValues(allowed map[string]bool) string {
	values := make([]string, 0, len(allowed))
	for k := range allowed {
		if k == "" {
			continue
		}
		values = append(values, k)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
