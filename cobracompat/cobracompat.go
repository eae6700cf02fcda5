// Package cobracompat imports existing cobra command trees into flagtree, so
// an application can move to the flagtree parser and completion protocol
// without rewriting its commands.
//
// Imported hooks receive the resolved cobra command, as cobra does, with its
// flags populated from the flagtree invocation. Two cobra behaviors change on
// import: every flag is visible to descendant commands, and all persistent
// hooks on the resolved path run, not only the closest one.
package cobracompat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cristianoliveira/flagtree"
	"github.com/cristianoliveira/flagtree/shell"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrCompletionDirective is returned when a cobra completion function
// reports ShellCompDirectiveError.
var ErrCompletionDirective = errors.New("cobra completion function reported an error")

// skipped lists the commands cobra generates on its own.
var skipped = map[string]bool{"help": true, "completion": true}

type importer struct {
	cobraOf map[*flagtree.Command]*cobra.Command
}

// Import converts root and its descendants.
func Import(root *cobra.Command) (*flagtree.Command, error) {
	if root == nil {
		return nil, errors.New("cobracompat: nil root command")
	}
	im := &importer{cobraOf: make(map[*flagtree.Command]*cobra.Command)}
	return im.convert(root)
}

func (im *importer) convert(cc *cobra.Command) (*flagtree.Command, error) {
	cmd := &flagtree.Command{
		Name:               cc.Name(),
		Aliases:            append([]string(nil), cc.Aliases...),
		Short:              cc.Short,
		Long:               cc.Long,
		Example:            cc.Example,
		Group:              cc.GroupID,
		Hidden:             cc.Hidden,
		ValidArgs:          validArgs(cc.ValidArgs),
		DisableSuggestions: cc.DisableSuggestions,
		SuggestionDistance: cc.SuggestionsMinimumDistance,
	}
	im.cobraOf[cmd] = cc

	if cc.Args != nil {
		args := cc.Args
		cmd.Args = flagtree.Custom(func(a []string) error { return args(cc, a) })
	}
	cmd.PersistentPreRun = im.hook(cc.PersistentPreRunE, cc.PersistentPreRun)
	cmd.PreRun = im.hook(cc.PreRunE, cc.PreRun)
	cmd.Run = im.hook(cc.RunE, cc.Run)
	cmd.PostRun = im.hook(cc.PostRunE, cc.PostRun)
	cmd.PersistentPostRun = im.hook(cc.PersistentPostRunE, cc.PersistentPostRun)
	if fn := cc.ValidArgsFunction; fn != nil {
		cmd.ArgCompletion = im.completion(fn)
	}

	if err := cmd.AddFlag(im.flags(cc, cmd)...); err != nil {
		return nil, fmt.Errorf("import flags of %q: %w", cc.CommandPath(), err)
	}

	for _, child := range cc.Commands() {
		if skipped[child.Name()] {
			continue
		}
		sub, err := im.convert(child)
		if err != nil {
			return nil, err
		}
		if err := cmd.AddCommand(sub); err != nil {
			return nil, fmt.Errorf("import %q: %w", child.CommandPath(), err)
		}
	}
	return cmd, nil
}

// validArgs drops cobra's "value\tdescription" suffixes.
func validArgs(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return lo.Map(values, func(v string, _ int) string {
		value, _, _ := strings.Cut(v, "\t")
		return value
	})
}

// flags converts the flags declared on cc, persistent ones first.
func (im *importer) flags(cc *cobra.Command, cmd *flagtree.Command) []*flagtree.Flag {
	var out []*flagtree.Flag
	seen := make(map[string]bool)
	visit := func(pf *pflag.Flag) {
		if seen[pf.Name] || pf.Name == "help" {
			return
		}
		seen[pf.Name] = true
		f := convertFlag(pf)
		if fn, ok := cc.GetFlagCompletionFunc(pf.Name); ok && fn != nil {
			cmd.SetFlagCompletion(pf.Name, im.completion(fn))
		}
		out = append(out, f)
	}
	cc.PersistentFlags().VisitAll(visit)
	cc.LocalNonPersistentFlags().VisitAll(visit)
	return out
}

func convertFlag(pf *pflag.Flag) *flagtree.Flag {
	var f *flagtree.Flag
	def := pf.DefValue
	switch pf.Value.Type() {
	case "bool":
		f = flagtree.BoolFlag(pf.Name)
		if def == "false" {
			def = ""
		}
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64", "count":
		f = flagtree.IntFlag(pf.Name)
		if def == "0" {
			def = ""
		}
	case "float32", "float64":
		f = flagtree.FloatFlag(pf.Name)
		if def == "0" {
			def = ""
		}
	case "stringArray":
		f = flagtree.StringArrayFlag(pf.Name)
		def = strings.Trim(def, "[]")
	default:
		if _, ok := pf.Value.(pflag.SliceValue); ok {
			f = flagtree.StringSliceFlag(pf.Name)
			def = strings.Trim(def, "[]")
			break
		}
		f = flagtree.StringFlag(pf.Name)
	}

	f.Usage = pf.Usage
	f.Default = def
	f.Hidden = pf.Hidden
	if r := []rune(pf.Shorthand); len(r) == 1 {
		f.Shorthand = r[0]
	}
	if lo.Contains(pf.Annotations[cobra.BashCompOneRequiredFlag], "true") {
		f.Required = true
	}
	return f
}

type cobraHookE func(*cobra.Command, []string) error
type cobraHook func(*cobra.Command, []string)

// hook adapts a cobra hook pair, preferring the error-returning variant as cobra does.
func (im *importer) hook(withErr cobraHookE, plain cobraHook) flagtree.HookFunc {
	switch {
	case withErr != nil:
		return func(ctx *flagtree.Context) error {
			cc, err := im.bind(ctx)
			if err != nil {
				return err
			}
			return withErr(cc, ctx.Args())
		}
	case plain != nil:
		return func(ctx *flagtree.Context) error {
			cc, err := im.bind(ctx)
			if err != nil {
				return err
			}
			plain(cc, ctx.Args())
			return nil
		}
	default:
		return nil
	}
}

// bind copies the explicitly set flag values of ctx into the resolved cobra command.
func (im *importer) bind(ctx *flagtree.Context) (*cobra.Command, error) {
	cc := im.cobraOf[ctx.Command()]
	if cc == nil {
		return nil, fmt.Errorf("cobracompat: %q was not imported", ctx.CommandPath())
	}
	cc.SetContext(ctx.Context())
	for name := range ctx.Flags() {
		pf := cc.Flag(name)
		if pf == nil {
			continue
		}
		if sv, ok := pf.Value.(pflag.SliceValue); ok {
			if err := sv.Replace(ctx.StringSlice(name)); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", name, err)
			}
		} else {
			value, _ := ctx.Value(name)
			if err := pf.Value.Set(value); err != nil {
				return nil, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
		pf.Changed = true
	}
	return cc, nil
}

// completion adapts a cobra completion function. Lines carrying cobra's
// active help marker become ActiveHelp messages.
func (im *importer) completion(fn cobra.CompletionFunc) flagtree.CompletionFunc {
	return func(ctx *flagtree.Context, prefix string) (*flagtree.CompletionResult, error) {
		cc, err := im.bind(ctx)
		if err != nil {
			return nil, err
		}
		values, directive := fn(cc, ctx.Args(), prefix)
		if directive&cobra.ShellCompDirectiveError != 0 {
			return nil, ErrCompletionDirective
		}
		res := flagtree.NewCompletionResult()
		for _, v := range values {
			if msg, ok := strings.CutPrefix(v, shell.ActiveHelpMarker); ok {
				res.AddHelp(strings.TrimSpace(msg))
				continue
			}
			value, desc, _ := strings.Cut(v, "\t")
			res.AddWithDescription(value, desc)
		}
		return res, nil
	}
}
