package flagtree

import (
	"context"
	"strings"

	"github.com/spf13/pflag"
)

// Context is the read-only view of one invocation: the resolved command path,
// the bound flag values and the positional arguments.
type Context struct {
	std      context.Context
	chain    []*Command
	args     []string
	flags    *pflag.FlagSet
	visible  map[string]*Flag
	settings Settings
	logger   Logger
}

// Context returns the context.Context of the invocation.
func (c *Context) Context() context.Context {
	if c.std == nil {
		return context.Background()
	}
	return c.std
}

// withStd returns a shallow copy carrying std.
func (c *Context) withStd(std context.Context) *Context {
	cp := *c
	cp.std = std
	return &cp
}

// Command returns the resolved command.
func (c *Context) Command() *Command {
	return c.chain[len(c.chain)-1]
}

// Root returns the root command of the tree.
func (c *Context) Root() *Command {
	return c.chain[0]
}

// Path returns the command names from the root to the resolved command.
func (c *Context) Path() []string {
	out := make([]string, len(c.chain))
	for i, cmd := range c.chain {
		out[i] = cmd.Name
	}
	return out
}

// CommandPath returns Path joined by spaces, e.g. "kubectl get".
func (c *Context) CommandPath() string {
	return strings.Join(c.Path(), " ")
}

// Args returns a copy of the positional arguments.
func (c *Context) Args() []string {
	return append([]string(nil), c.args...)
}

// Arg returns the i-th positional argument or "" when out of range.
func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.args) {
		return ""
	}
	return c.args[i]
}

// NArg returns the number of positional arguments.
func (c *Context) NArg() int {
	return len(c.args)
}

// Settings returns the framework settings in effect.
func (c *Context) Settings() Settings {
	return c.settings
}

// Logger returns the framework logger. It never returns nil.
func (c *Context) Logger() Logger {
	if c.logger == nil {
		return nopLogger()
	}
	return c.logger
}

// Lookup returns the visible flag declaration for name.
func (c *Context) Lookup(name string) (*Flag, bool) {
	f, ok := c.visible[name]
	return f, ok
}

// IsSet reports whether the flag was given explicitly.
func (c *Context) IsSet(name string) bool {
	if c.flags == nil {
		return false
	}
	return c.flags.Changed(name)
}

// Value returns the textual value of a flag, default included.
func (c *Context) Value(name string) (string, bool) {
	f, ok := c.visible[name]
	if !ok || c.flags == nil {
		return "", false
	}
	if f.Type.accumulates() {
		return strings.Join(c.StringSlice(name), ","), true
	}
	pf := c.flags.Lookup(name)
	if pf == nil {
		return "", false
	}
	return pf.Value.String(), true
}

// String returns the value of a string-like flag (string, choice, file, dir).
func (c *Context) String(name string) string {
	v, _ := c.Value(name)
	return v
}

// Bool returns the value of a bool flag.
func (c *Context) Bool(name string) bool {
	pf := c.pflag(name)
	if pf == nil {
		return false
	}
	if bv, ok := pf.Value.(*boolValue); ok {
		return bv.value
	}
	return false
}

// Int returns the value of an int or range flag.
func (c *Context) Int(name string) int64 {
	pf := c.pflag(name)
	if pf == nil {
		return 0
	}
	if rv, ok := pf.Value.(*rangeValue); ok {
		return rv.value
	}
	n, err := c.flags.GetInt64(name)
	if err != nil {
		return 0
	}
	return n
}

// Float returns the value of a float flag.
func (c *Context) Float(name string) float64 {
	if c.pflag(name) == nil {
		return 0
	}
	n, err := c.flags.GetFloat64(name)
	if err != nil {
		return 0
	}
	return n
}

// StringSlice returns the accumulated values of a slice or array flag.
func (c *Context) StringSlice(name string) []string {
	f, ok := c.visible[name]
	if !ok || c.flags == nil {
		return nil
	}
	var (
		out []string
		err error
	)
	switch f.Type {
	case TypeStringSlice:
		out, err = c.flags.GetStringSlice(name)
	case TypeStringArray:
		out, err = c.flags.GetStringArray(name)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return append([]string(nil), out...)
}

// Flags returns the explicitly set flags and their textual values.
func (c *Context) Flags() map[string]string {
	out := make(map[string]string)
	if c.flags == nil {
		return out
	}
	c.flags.Visit(func(pf *pflag.Flag) {
		if _, ok := c.visible[pf.Name]; !ok {
			return
		}
		v, _ := c.Value(pf.Name)
		out[pf.Name] = v
	})
	return out
}

func (c *Context) pflag(name string) *pflag.Flag {
	if c.flags == nil {
		return nil
	}
	if _, ok := c.visible[name]; !ok {
		return nil
	}
	return c.flags.Lookup(name)
}
