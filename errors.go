package flagtree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies framework errors.
type ErrorKind int

// Error kinds.
const (
	KindCustom ErrorKind = iota
	KindCommandNotFound
	KindSubcommandRequired
	KindFlagParsing
	KindArgumentParsing
	KindValidation
	KindCompletion
	KindIO
	KindDuplicateName
)

var kindNames = map[ErrorKind]string{
	KindCustom:             "custom",
	KindCommandNotFound:    "command not found",
	KindSubcommandRequired: "subcommand required",
	KindFlagParsing:        "flag parsing",
	KindArgumentParsing:    "argument parsing",
	KindValidation:         "validation",
	KindCompletion:         "completion",
	KindIO:                 "io",
	KindDuplicateName:      "duplicate name",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrCommandNotFound    = errors.New("command not found")
	ErrSubcommandRequired = errors.New("subcommand required")
	ErrFlagParsing        = errors.New("flag parsing failed")
	ErrArgumentParsing    = errors.New("argument parsing failed")
	ErrValidation         = errors.New("validation failed")
	ErrCompletion         = errors.New("completion failed")
	ErrIO                 = errors.New("io failure")
	ErrDuplicateName      = errors.New("duplicate name")
)

var kindSentinels = map[ErrorKind]error{
	KindCommandNotFound:    ErrCommandNotFound,
	KindSubcommandRequired: ErrSubcommandRequired,
	KindFlagParsing:        ErrFlagParsing,
	KindArgumentParsing:    ErrArgumentParsing,
	KindValidation:         ErrValidation,
	KindCompletion:         ErrCompletion,
	KindIO:                 ErrIO,
	KindDuplicateName:      ErrDuplicateName,
}

// Error is returned by every framework operation that fails.
// Errors produced by application callbacks are returned unchanged instead.
type Error struct {
	Kind    ErrorKind
	Message string

	// Command is the offending command name or path.
	Command string
	// Flag is the long name of the flag involved, if any.
	Flag string
	// ExpectedType is the declared type of Flag on a conversion failure.
	ExpectedType string
	// Received is the raw text that failed to parse or match.
	Received string
	// Expected describes the accepted positional argument count.
	Expected string
	// ReceivedCount is the number of positional arguments supplied.
	ReceivedCount int

	// Suggestions are "did you mean" candidates or remediation hints.
	Suggestions []string
	Cause       error
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// Format renders the error for people: the message, suggestion bullets and,
// when verbose, the cause chain.
func (e *Error) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString("Error: ")
	msg.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		if e.didYouMean() {
			msg.WriteString("\n\nDid you mean this?")
		} else {
			msg.WriteString("\n")
		}
		for _, s := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		depth := 1
		for err := e.Cause; err != nil; err = errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			depth++
		}
	}
	return msg.String()
}

// didYouMean reports whether the suggestions are spelling candidates rather than hints.
func (e *Error) didYouMean() bool {
	switch e.Kind {
	case KindCommandNotFound:
		return true
	case KindFlagParsing:
		return e.ExpectedType == ""
	default:
		return false
	}
}

// KindOf classifies err. Errors that are not *Error are KindCustom.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindCustom
}

// commandNotFound builds the error for an unknown subcommand.
func commandNotFound(name, path string, suggestions []string) *Error {
	e := newError(KindCommandNotFound, "unknown command %q for %q", name, path)
	e.Command = name
	e.Received = name
	e.Suggestions = suggestions
	return e
}

func subcommandRequired(path string, available []string) *Error {
	e := newError(KindSubcommandRequired, "%q requires a subcommand", path)
	e.Command = path
	if len(available) > 0 {
		e.Suggestions = []string{"available: " + strings.Join(available, ", ")}
	}
	return e
}

func unknownFlag(token string, suggestions []string) *Error {
	e := newError(KindFlagParsing, "unknown flag: %s", token)
	e.Flag = strings.TrimLeft(token, "-")
	e.Received = token
	for _, s := range suggestions {
		e.Suggestions = append(e.Suggestions, "--"+s)
	}
	return e
}

func invalidFlagValue(f *Flag, raw string, cause error) *Error {
	e := newError(KindFlagParsing, "invalid value %q for flag --%s: expected %s", raw, f.Name, f.TypeLabel())
	e.Flag = f.Name
	e.ExpectedType = f.TypeLabel()
	e.Received = raw
	e.Cause = cause
	if hint := f.valueHint(); hint != "" {
		e.Suggestions = []string{hint}
	}
	return e
}

func missingFlagValue(f *Flag) *Error {
	e := newError(KindFlagParsing, "flag needs an argument: --%s", f.Name)
	e.Flag = f.Name
	e.ExpectedType = f.TypeLabel()
	return e
}

func argumentError(expected string, received int) *Error {
	e := newError(KindArgumentParsing, "accepts %s, received %d", expected, received)
	e.Expected = expected
	e.ReceivedCount = received
	return e
}

func validationError(flag, format string, args ...any) *Error {
	e := newError(KindValidation, format, args...)
	e.Flag = flag
	return e
}

func duplicateName(what, name, parent string) *Error {
	e := newError(KindDuplicateName, "%s %q already defined on %q", what, name, parent)
	e.Command = parent
	e.Received = name
	return e
}

func ioError(op string, cause error) *Error {
	e := newError(KindIO, "%s", op)
	e.Cause = cause
	return e
}

func completionError(cause error) *Error {
	e := newError(KindCompletion, "completion callback failed")
	e.Cause = cause
	return e
}
