// Package demo is a small kubectl-like application built on flagtree. It is
// the program behind cmd/kubedemo and the tree exercised by the integration
// tests.
package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/cristianoliveira/flagtree"
	"github.com/cristianoliveira/flagtree/internal/version"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Name is the program name of the demo.
const Name = "kubedemo"

// Options configures NewRoot.
type Options struct {
	// Inventory backs listing and completion. Defaults to SampleInventory.
	Inventory Inventory
	// CacheTTL is the lifetime of cached completions. Defaults to flagtree.DefaultCacheTTL.
	CacheTTL time.Duration
}

type app struct {
	inv   Inventory
	cache *flagtree.CompletionCache
}

// NewRoot builds the command tree.
func NewRoot(opts Options) (*flagtree.Command, error) {
	if opts.Inventory == nil {
		opts.Inventory = SampleInventory()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = flagtree.DefaultCacheTTL
	}
	a := &app{
		inv:   opts.Inventory,
		cache: flagtree.NewCompletionCache(opts.CacheTTL, flagtree.WithStringPool(flagtree.NewStringPool())),
	}

	root := &flagtree.Command{
		Name:  Name,
		Short: "kubedemo inspects a toy cluster inventory",
		Long: "kubedemo inspects a toy cluster inventory.\n\n" +
			"Enable completion with: source <(kubedemo completion bash)",
	}
	if err := root.AddFlag(
		flagtree.StringFlag("namespace").WithShort('n').WithDefault("default").WithUsage("namespace scope for this request"),
		flagtree.BoolFlag("verbose").WithShort('v').WithUsage("print extra diagnostics"),
	); err != nil {
		return nil, err
	}
	root.SetFlagCompletion("namespace", a.cache.Wrap(a.completeNamespaces))

	builders := []func() (*flagtree.Command, error){
		a.getCmd, a.deleteCmd, a.describeCmd, a.configCmd, versionCmd,
	}
	for _, build := range builders {
		cmd, err := build()
		if err != nil {
			return nil, err
		}
		if err := root.AddCommand(cmd); err != nil {
			return nil, err
		}
	}
	if err := root.AddCommand(flagtree.CompletionCommand()); err != nil {
		return nil, err
	}
	return root, nil
}

// kindArgs requires a known kind as first argument, then at least extra more.
func (a *app) kindArgs(extra int) flagtree.PositionalArgs {
	return flagtree.MatchAll(
		flagtree.MinimumArgs(extra+1),
		func(args []string) error { return flagtree.OnlyValidArgs(a.inv.Kinds()...)(args[:1]) },
	)
}

func (a *app) getCmd() (*flagtree.Command, error) {
	cmd := &flagtree.Command{
		Name:    "get",
		Short:   "Display one or many resources",
		Example: "  kubedemo get pod\n  kubedemo get pod web-7d9f -o yaml\n  kubedemo get pod -l app=web",
		Args:    a.kindArgs(0),
		Run:     a.runGet,
	}
	cmd.ArgCompletion = a.cache.Wrap(a.completeResources)
	err := cmd.AddFlag(
		flagtree.ChoiceFlag("output", FormatTable, FormatWide, FormatJSON, FormatYAML).
			WithShort('o').WithDefault(FormatTable).WithUsage("output format"),
		flagtree.StringSliceFlag("selector").WithShort('l').WithUsage("label selector, e.g. app=web"),
		flagtree.RangeFlag("limit", 1, 500).WithUsage("maximum number of resources to print"),
	)
	return cmd, err
}

func (a *app) runGet(ctx *flagtree.Context) error {
	ns := ctx.String("namespace")
	resources, err := a.inv.List(ctx.Context(), ctx.Arg(0), ns)
	if err != nil {
		return err
	}
	if names := ctx.Args()[1:]; len(names) > 0 {
		resources = lo.Filter(resources, func(r Resource, _ int) bool { return lo.Contains(names, r.Name) })
	}
	selectors, err := parseSelectors(ctx.StringSlice("selector"))
	if err != nil {
		return err
	}
	resources = lo.Filter(resources, func(r Resource, _ int) bool { return matches(r, selectors) })
	if ctx.IsSet("limit") {
		if n := int(ctx.Int("limit")); n < len(resources) {
			resources = resources[:n]
		}
	}
	ctx.Logger().Debug("get", "kind", ctx.Arg(0), "namespace", ns, "count", len(resources))
	return render(ctx.Root().OutOrStdout(), ctx.String("output"), resources)
}

func parseSelectors(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, s := range raw {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid selector %q: want key=value", s)
		}
		out[k] = v
	}
	return out, nil
}

func matches(r Resource, selectors map[string]string) bool {
	for k, v := range selectors {
		if r.Labels[k] != v {
			return false
		}
	}
	return true
}

func (a *app) deleteCmd() (*flagtree.Command, error) {
	cmd := &flagtree.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Short:   "Delete resources by kind and name",
		Args:    a.kindArgs(1),
		Run:     a.runDelete,
	}
	cmd.ArgCompletion = a.cache.Wrap(a.completeResources)
	err := cmd.AddFlag(
		flagtree.ChoiceFlag("dry-run", "none", "client").WithDefault("none").WithUsage("only print what would be deleted"),
		flagtree.IntFlag("grace-period").WithUsage("seconds given to the resource to terminate"),
		flagtree.BoolFlag("now").WithUsage("delete immediately").WithConstraint(flagtree.ConflictsWith("grace-period")),
		flagtree.BoolFlag("force").WithUsage("skip graceful deletion").WithConstraint(flagtree.Requires("now")),
	)
	return cmd, err
}

func (a *app) runDelete(ctx *flagtree.Context) error {
	kind, ns := ctx.Arg(0), ctx.String("namespace")
	dryRun := ctx.String("dry-run") == "client"
	out := ctx.Root().OutOrStdout()
	for _, name := range ctx.Args()[1:] {
		if !dryRun {
			if err := a.inv.Delete(ctx.Context(), kind, ns, name); err != nil {
				return err
			}
		}
		suffix := ""
		if dryRun {
			suffix = " (dry run)"
		}
		if _, err := fmt.Fprintf(out, "%s %q deleted%s\n", kind, name, suffix); err != nil {
			return err
		}
	}
	if !dryRun {
		a.cache.Clear()
	}
	return nil
}

func (a *app) describeCmd() (*flagtree.Command, error) {
	cmd := &flagtree.Command{
		Name:  "describe",
		Short: "Show details of a resource",
		Args:  flagtree.MatchAll(flagtree.ExactArgs(2), a.kindArgs(1)),
		Run: func(ctx *flagtree.Context) error {
			resources, err := a.inv.List(ctx.Context(), ctx.Arg(0), ctx.String("namespace"))
			if err != nil {
				return err
			}
			r, ok := lo.Find(resources, func(r Resource) bool { return r.Name == ctx.Arg(1) })
			if !ok {
				return fmt.Errorf("%s %q not found in namespace %q", ctx.Arg(0), ctx.Arg(1), ctx.String("namespace"))
			}
			return describe(ctx.Root().OutOrStdout(), r)
		},
	}
	cmd.ArgCompletion = a.cache.Wrap(a.completeResources)
	return cmd, nil
}

// settingsView is the TOML rendering of the resolved framework settings.
type settingsView struct {
	Complete           string `toml:"complete"`
	ActiveHelp         bool   `toml:"active_help"`
	CompletionTimeout  string `toml:"completion_timeout"`
	SuggestionDistance int    `toml:"suggestion_distance"`
	LogFile            string `toml:"log_file"`
	LogLevel           string `toml:"log_level"`
}

func (a *app) configCmd() (*flagtree.Command, error) {
	cfg := &flagtree.Command{
		Name:  "config",
		Short: "Inspect framework settings",
		Group: "Settings",
	}
	show := &flagtree.Command{
		Name:  "show",
		Short: "Print the resolved settings as TOML",
		Args:  flagtree.NoArgs,
		Run: func(ctx *flagtree.Context) error {
			s := ctx.Settings()
			out := ctx.Root().OutOrStdout()
			if s.ConfigFile != "" {
				if _, err := fmt.Fprintf(out, "# loaded from %s\n", s.ConfigFile); err != nil {
					return err
				}
			}
			enc := toml.NewEncoder(out)
			return enc.Encode(settingsView{
				Complete:           s.Shell,
				ActiveHelp:         s.ActiveHelp,
				CompletionTimeout:  s.CompletionTimeout.String(),
				SuggestionDistance: s.SuggestionDistance,
				LogFile:            s.LogFile,
				LogLevel:           s.LogLevel,
			})
		},
	}
	return cfg, cfg.AddCommand(show)
}

func versionCmd() (*flagtree.Command, error) {
	return &flagtree.Command{
		Name:  "version",
		Short: "Show version information",
		Group: "Settings",
		Args:  flagtree.NoArgs,
		Run: func(ctx *flagtree.Context) error {
			_, err := fmt.Fprintln(ctx.Root().OutOrStdout(), version.Line(Name))
			return err
		},
	}, nil
}
