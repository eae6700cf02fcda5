package flagtree

import (
	"context"
	"os"

	"github.com/cristianoliveira/flagtree/internal/suggest"
)

// runtime holds the per-Execute settings and logger.
type runtime struct {
	settings Settings
	logger   Logger
	closeLog func() error
}

func (c *Command) newRuntime() *runtime {
	rt := &runtime{closeLog: func() error { return nil }}
	if c.settings != nil {
		rt.settings = *c.settings
	} else {
		environ := c.environ
		if environ == nil {
			environ = os.Environ()
		}
		rt.settings = LoadSettings(c.Name, environ)
	}

	switch {
	case c.logger != nil:
		rt.logger = c.logger
	case rt.settings.LogFile != "":
		l, err := NewJSONLogger(c.Name, rt.settings.LogFile, rt.settings.LogLevel)
		if err != nil {
			rt.logger = nopLogger()
			break
		}
		rt.logger = l
		rt.closeLog = l.Shutdown
	default:
		rt.logger = nopLogger()
	}
	for _, w := range rt.settings.Warnings {
		rt.logger.Warn("invalid setting", "detail", w)
	}
	return rt
}

// Execute parses args (without the program name) against the tree rooted at
// c and runs the selected command. When args starts with the hidden
// completion command, completion candidates are written instead.
func (c *Command) Execute(args []string) error {
	return c.ExecuteContext(context.Background(), args)
}

// ExecuteContext is Execute with a context made available to callbacks
// through Context.Context.
func (c *Command) ExecuteContext(ctx context.Context, args []string) error {
	rt := c.newRuntime()
	defer func() { _ = rt.closeLog() }()

	if len(args) > 0 && args[0] == CompleteCommandName {
		return c.serveCompletion(ctx, rt, args[1:])
	}
	return c.dispatch(ctx, rt, args)
}

func (c *Command) dispatch(ctx context.Context, rt *runtime, args []string) error {
	inv, err := c.parse(args, false, rt.settings.SuggestionDistance)
	if err != nil {
		rt.logger.Debug("parse failed", "error", err)
		return err
	}
	fctx := inv.context(ctx, rt)
	leaf := inv.leaf()
	rt.logger.Debug("resolved command", "path", fctx.CommandPath(), "args", len(inv.args))

	if inv.help {
		return c.writeHelp(fctx)
	}

	if err := checkConstraints(inv); err != nil {
		return err
	}
	if leaf.Args != nil {
		if err := leaf.Args(fctx.Args()); err != nil {
			return err
		}
	}
	if !leaf.Runnable() {
		if leaf.HasSubcommands() && len(inv.args) > 0 {
			var suggestions []string
			if !leaf.DisableSuggestions {
				suggestions = suggest.Find(inv.args[0], leaf.childNames(), suggestionDistance(leaf, rt.settings.SuggestionDistance))
			}
			return commandNotFound(inv.args[0], fctx.CommandPath(), suggestions)
		}
		var available []string
		for _, ch := range leaf.children {
			if !ch.Hidden {
				available = append(available, ch.Name)
			}
		}
		return subcommandRequired(fctx.CommandPath(), available)
	}
	return runHooks(fctx, inv.chain)
}

func (inv *invocation) context(ctx context.Context, rt *runtime) *Context {
	return &Context{
		std:      ctx,
		chain:    inv.chain,
		args:     inv.args,
		flags:    inv.fs,
		visible:  inv.scope.byName,
		settings: rt.settings,
		logger:   rt.logger,
	}
}

// checkConstraints enforces required flags and cross-flag constraints.
// Rules are evaluated in declaration order, root first, so the reported
// failure does not depend on the order flags appeared in argv.
func checkConstraints(inv *invocation) error {
	set := inv.fs.Changed
	for _, f := range inv.scope.order {
		present := set(f.Name)
		if f.Required && !present {
			return validationError(f.Name, "required flag --%s not provided", f.Name)
		}
		for _, c := range f.Constraints {
			switch c.Kind {
			case ConstraintRequiredIf:
				if !present && set(c.Flags[0]) {
					return validationError(f.Name, "flag --%s is required when --%s is set", f.Name, c.Flags[0])
				}
			case ConstraintConflictsWith:
				if !present {
					continue
				}
				for _, other := range c.Flags {
					if set(other) {
						return validationError(f.Name, "flags --%s and --%s cannot be used together", f.Name, other)
					}
				}
			case ConstraintRequires:
				if !present {
					continue
				}
				for _, other := range c.Flags {
					if !set(other) {
						return validationError(f.Name, "flag --%s requires --%s", f.Name, other)
					}
				}
			}
		}
	}
	return nil
}

// runHooks runs the lifecycle of an invocation and stops at the first error:
// persistent pre-runs root to leaf, pre-run, run, post-run, then persistent
// post-runs leaf to root.
func runHooks(ctx *Context, chain []*Command) error {
	leaf := chain[len(chain)-1]
	for _, cmd := range chain {
		if err := call(cmd.PersistentPreRun, ctx); err != nil {
			return err
		}
	}
	for _, hook := range []HookFunc{leaf.PreRun, leaf.Run, leaf.PostRun} {
		if err := call(hook, ctx); err != nil {
			return err
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if err := call(chain[i].PersistentPostRun, ctx); err != nil {
			return err
		}
	}
	return nil
}

func call(hook HookFunc, ctx *Context) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}
