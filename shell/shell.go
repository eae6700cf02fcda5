// Package shell renders completion candidates in the line formats the
// bash, zsh and fish wrapper scripts expect, and generates those scripts.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Shell is a supported completion dialect.
type Shell string

// Supported shells.
const (
	Bash Shell = "bash"
	Zsh  Shell = "zsh"
	Fish Shell = "fish"
)

// ActiveHelpMarker prefixes lines that carry a help message instead of a candidate.
const ActiveHelpMarker = "_activehelp_"

// All lists the supported shells.
func All() []Shell {
	return []Shell{Bash, Zsh, Fish}
}

// Parse returns the shell named name. Matching is case-insensitive.
func Parse(name string) (Shell, error) {
	switch s := Shell(strings.ToLower(strings.TrimSpace(name))); s {
	case Bash, Zsh, Fish:
		return s, nil
	default:
		return "", fmt.Errorf("unsupported shell %q: use one of bash, zsh, fish", name)
	}
}

// FromEnv returns the dialect for a <APP>_COMPLETE value. Unknown or empty
// values select bash, the plainest format.
func FromEnv(value string) Shell {
	s, err := Parse(value)
	if err != nil {
		return Bash
	}
	return s
}

// Candidate is one completion value with an optional description.
type Candidate struct {
	Value       string
	Description string
}

// FormatCandidate renders one candidate line.
func (s Shell) FormatCandidate(c Candidate) string {
	desc := cleanDescription(c.Description)
	switch s {
	case Zsh:
		value := strings.ReplaceAll(c.Value, ":", `\:`)
		if desc == "" {
			return value
		}
		return value + ":" + desc
	case Fish:
		if desc == "" {
			return c.Value
		}
		return c.Value + "\t" + desc
	default:
		return c.Value
	}
}

// FormatActiveHelp renders one help line.
func (s Shell) FormatActiveHelp(message string) string {
	message = cleanDescription(message)
	switch s {
	case Zsh:
		return ActiveHelpMarker + "::" + message
	case Fish:
		return ActiveHelpMarker + "\t" + message
	default:
		return ActiveHelpMarker + " " + message
	}
}

// cleanDescription keeps the first line and replaces tabs, which separate fields in fish output.
func cleanDescription(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.ReplaceAll(s, "\t", " "))
}

// Write emits help lines followed by candidate lines, one per line.
func Write(w io.Writer, s Shell, candidates []Candidate, help []string) error {
	bw := bufio.NewWriter(w)
	for _, h := range help {
		if _, err := fmt.Fprintln(bw, s.FormatActiveHelp(h)); err != nil {
			return err
		}
	}
	for _, c := range candidates {
		if _, err := fmt.Fprintln(bw, s.FormatCandidate(c)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
