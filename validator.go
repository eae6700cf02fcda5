package flagtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cristianoliveira/flagtree/internal/suggest"
	"github.com/samber/lo"
)

// PositionalArgs validates the positional arguments of an invocation.
// Validators report failures as ArgumentParsing errors.
type PositionalArgs func(args []string) error

func plural(n int) string {
	if n == 1 {
		return "arg"
	}
	return "args"
}

// NoArgs rejects any positional argument.
func NoArgs(args []string) error {
	if len(args) > 0 {
		e := argumentError("no args", len(args))
		e.Received = args[0]
		return e
	}
	return nil
}

// ArbitraryArgs accepts anything.
func ArbitraryArgs(args []string) error {
	return nil
}

// ExactArgs requires exactly n arguments.
func ExactArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) != n {
			return argumentError(fmt.Sprintf("%d %s", n, plural(n)), len(args))
		}
		return nil
	}
}

// MinimumArgs requires at least n arguments.
func MinimumArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) < n {
			return argumentError(fmt.Sprintf("at least %d %s", n, plural(n)), len(args))
		}
		return nil
	}
}

// MaximumArgs allows at most n arguments.
func MaximumArgs(n int) PositionalArgs {
	return func(args []string) error {
		if len(args) > n {
			return argumentError(fmt.Sprintf("at most %d %s", n, plural(n)), len(args))
		}
		return nil
	}
}

// RangeArgs requires between min and max arguments, inclusive.
func RangeArgs(min, max int) PositionalArgs {
	return func(args []string) error {
		if len(args) < min || len(args) > max {
			return argumentError(fmt.Sprintf("between %d and %d args", min, max), len(args))
		}
		return nil
	}
}

// OnlyValidArgs requires every argument to be one of valid.
func OnlyValidArgs(valid ...string) PositionalArgs {
	return validArgs{values: valid}.check
}

type validArgs struct {
	values []string
}

func (v validArgs) check(args []string) error {
	for _, a := range args {
		if lo.Contains(v.values, a) {
			continue
		}
		e := argumentError("only: "+strings.Join(v.values, ", "), len(args))
		e.Message = fmt.Sprintf("invalid argument %q, valid arguments: %s", a, strings.Join(v.values, ", "))
		e.Received = a
		e.Suggestions = suggest.Find(a, v.values, suggest.DefaultDistance)
		return e
	}
	return nil
}

// Custom wraps an application predicate. Errors that are not already
// framework errors become ArgumentParsing errors carrying the cause.
func Custom(fn func(args []string) error) PositionalArgs {
	return func(args []string) error {
		err := fn(args)
		if err == nil {
			return nil
		}
		var fe *Error
		if errors.As(err, &fe) {
			return err
		}
		e := argumentError("valid arguments", len(args))
		e.Message = "invalid arguments"
		e.Cause = err
		return e
	}
}

// MatchAll runs validators in order and returns the first failure.
func MatchAll(validators ...PositionalArgs) PositionalArgs {
	return func(args []string) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(args); err != nil {
				return err
			}
		}
		return nil
	}
}
