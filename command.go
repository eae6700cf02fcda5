package flagtree

import (
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// HookFunc is a lifecycle callback. A non-nil error stops the invocation.
type HookFunc func(ctx *Context) error

// Command is a node of the command tree.
//
// A command holds no reference to its parent; ancestor information is
// carried down by the parser while it walks the tree.
type Command struct {
	// Name is the token that selects this command. Unique among siblings.
	Name string
	// Aliases are alternative tokens, unique among siblings as well.
	Aliases []string

	Short   string
	Long    string
	Example string
	// Group clusters subcommands in help output.
	Group  string
	Hidden bool

	// Args validates positional arguments. Nil accepts anything.
	Args PositionalArgs
	// ValidArgs are static positional completion candidates.
	ValidArgs []string

	PersistentPreRun  HookFunc
	PreRun            HookFunc
	Run               HookFunc
	PostRun           HookFunc
	PersistentPostRun HookFunc

	// ArgCompletion completes positional arguments.
	ArgCompletion CompletionFunc

	DisableSuggestions bool
	// SuggestionDistance overrides the maximum edit distance of suggestions.
	SuggestionDistance int

	flags           []*Flag
	children        []*Command
	flagCompletions map[string]CompletionFunc

	// Runtime configuration, only consulted on the command Execute is called on.
	out      io.Writer
	errOut   io.Writer
	logger   Logger
	settings *Settings
	environ  []string
}

// AddCommand attaches children in order.
// It fails with DuplicateName when a name or alias collides with a sibling;
// in that case no child is added.
func (c *Command) AddCommand(children ...*Command) error {
	taken := make(map[string]bool)
	for _, existing := range c.children {
		for _, n := range existing.names() {
			taken[n] = true
		}
	}
	for _, child := range children {
		if child == nil {
			return validationError("", "cannot add a nil command to %q", c.Name)
		}
		if child == c {
			return validationError("", "command %q cannot be its own subcommand", c.Name)
		}
		for _, n := range child.names() {
			if !validCommandName(n) {
				return validationError("", "invalid command name %q", n)
			}
			if taken[n] {
				return duplicateName("command", n, c.Name)
			}
			taken[n] = true
		}
	}
	c.children = append(c.children, children...)
	return nil
}

// AddFlag attaches flags in order.
// A repeated name or shorthand fails with DuplicateName, an invalid
// declaration or default with Validation; in both cases nothing is added.
func (c *Command) AddFlag(flags ...*Flag) error {
	names := make(map[string]bool)
	shorts := make(map[rune]bool)
	for _, f := range c.flags {
		names[f.Name] = true
		if f.Shorthand != 0 {
			shorts[f.Shorthand] = true
		}
	}
	for _, f := range flags {
		if f == nil {
			return validationError("", "cannot add a nil flag to %q", c.Name)
		}
		if err := f.validate(); err != nil {
			return err
		}
		if names[f.Name] {
			return duplicateName("flag", f.Name, c.Name)
		}
		names[f.Name] = true
		if f.Shorthand != 0 {
			if shorts[f.Shorthand] {
				return duplicateName("shorthand", string(f.Shorthand), c.Name)
			}
			shorts[f.Shorthand] = true
		}
	}
	c.flags = append(c.flags, flags...)
	return nil
}

// SetFlagCompletion registers fn as the value completion of the flag named
// name, for invocations that resolve to this command or one of its descendants.
func (c *Command) SetFlagCompletion(name string, fn CompletionFunc) {
	if c.flagCompletions == nil {
		c.flagCompletions = make(map[string]CompletionFunc)
	}
	c.flagCompletions[name] = fn
}

// Resolve consumes leading tokens that name subcommands (or their aliases)
// and returns the deepest command reached with the remaining tokens.
// It never fails: with no matching token the receiver itself is returned.
func (c *Command) Resolve(tokens []string) (*Command, []string) {
	cur := c
	i := 0
	for ; i < len(tokens); i++ {
		next := cur.child(tokens[i])
		if next == nil {
			break
		}
		cur = next
	}
	return cur, append([]string{}, tokens[i:]...)
}

// Commands returns the subcommands in insertion order.
func (c *Command) Commands() []*Command {
	return append([]*Command(nil), c.children...)
}

// Flags returns the command's own flags in declaration order.
func (c *Command) Flags() []*Flag {
	return append([]*Flag(nil), c.flags...)
}

// LookupFlag returns the command's own flag named name.
func (c *Command) LookupFlag(name string) *Flag {
	f, _ := lo.Find(c.flags, func(f *Flag) bool { return f.Name == name })
	return f
}

// LookupCommand returns the direct child selected by name or alias.
func (c *Command) LookupCommand(name string) *Command {
	return c.child(name)
}

// HasSubcommands reports whether the command has children.
func (c *Command) HasSubcommands() bool {
	return len(c.children) > 0
}

// Runnable reports whether the command has a Run callback.
func (c *Command) Runnable() bool {
	return c.Run != nil
}

// SetOut sets the writer for help and completion output. Defaults to os.Stdout.
func (c *Command) SetOut(w io.Writer) { c.out = w }

// SetErr sets the writer for diagnostics. Defaults to os.Stderr.
func (c *Command) SetErr(w io.Writer) { c.errOut = w }

// SetLogger sets the framework logger, overriding <APP>_LOG_FILE.
func (c *Command) SetLogger(l Logger) { c.logger = l }

// SetSettings fixes the settings instead of loading them from the environment.
func (c *Command) SetSettings(s Settings) { c.settings = &s }

// SetEnviron replaces os.Environ as the source of <APP>_* settings.
func (c *Command) SetEnviron(environ []string) {
	c.environ = make([]string, len(environ))
	copy(c.environ, environ)
}

// OutOrStdout returns the configured output writer.
func (c *Command) OutOrStdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

// ErrOrStderr returns the configured diagnostics writer.
func (c *Command) ErrOrStderr() io.Writer {
	if c.errOut != nil {
		return c.errOut
	}
	return os.Stderr
}

func (c *Command) names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

func (c *Command) child(name string) *Command {
	for _, ch := range c.children {
		if ch.Name == name || lo.Contains(ch.Aliases, name) {
			return ch
		}
	}
	return nil
}

// childNames lists visible child names and aliases for suggestions.
func (c *Command) childNames() []string {
	var out []string
	for _, ch := range c.children {
		if ch.Hidden {
			continue
		}
		out = append(out, ch.names()...)
	}
	return out
}

func validCommandName(name string) bool {
	return name != "" && !strings.HasPrefix(name, "-") && !strings.ContainsAny(name, " \t\n=")
}
