// Package flagtree is a framework for command-line applications built as a
// tree of commands and flags, with completions computed by the application
// itself at the moment the user presses tab.
//
// A program declares its tree once:
//
//	root := &flagtree.Command{Name: "kubectl"}
//	get := &flagtree.Command{
//		Name:  "get",
//		Short: "Display one or many resources",
//		Args:  flagtree.MinimumArgs(1),
//		Run: func(ctx *flagtree.Context) error {
//			fmt.Println(ctx.String("namespace"), ctx.Args())
//			return nil
//		},
//		ArgCompletion: func(ctx *flagtree.Context, prefix string) (*flagtree.CompletionResult, error) {
//			return flagtree.CompleteValues("pods", "services"), nil
//		},
//	}
//	_ = root.AddFlag(flagtree.StringFlag("namespace").WithShort('n').WithDefault("default"))
//	_ = root.AddCommand(get, flagtree.CompletionCommand())
//	if err := root.Execute(os.Args[1:]); err != nil { ... }
//
// The generated shell scripts call the program back as
// "<program> __complete <words...> <partial>" with <APP>_COMPLETE set to the
// shell name; Execute answers with one candidate per line.
package flagtree
