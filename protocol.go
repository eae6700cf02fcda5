package flagtree

import (
	"context"
	"io"

	"github.com/cristianoliveira/flagtree/shell"
)

// serveCompletion answers a "__complete" request on the output writer in the
// dialect selected by <APP>_COMPLETE. Callback failures only reach the log:
// the shell always gets a well-formed, possibly empty, answer.
func (c *Command) serveCompletion(ctx context.Context, rt *runtime, words []string) error {
	res, err := c.complete(ctx, rt, words)
	if err != nil {
		rt.logger.Debug("completion degraded", "error", err)
	}
	dialect := shell.FromEnv(rt.settings.Shell)
	if err := writeCompletion(c.OutOrStdout(), dialect, res); err != nil {
		return ioError("write completion output", err)
	}
	return nil
}

func writeCompletion(w io.Writer, dialect shell.Shell, res *CompletionResult) error {
	candidates := make([]shell.Candidate, len(res.Items))
	for i, it := range res.Items {
		candidates[i] = shell.Candidate{Value: it.Value, Description: it.Description}
	}
	return shell.Write(w, dialect, candidates, res.Messages())
}

// GenerateCompletion writes the completion script of shellName for c.
func (c *Command) GenerateCompletion(w io.Writer, shellName string) error {
	sh, err := shell.Parse(shellName)
	if err != nil {
		e := validationError("", "%v", err)
		e.Received = shellName
		return e
	}
	if err := shell.Script(w, sh, c.Name); err != nil {
		return ioError("write completion script", err)
	}
	return nil
}

// CompletionCommand returns a "completion" subcommand printing the script
// for the shell given as its only argument.
func CompletionCommand() *Command {
	valid := make([]string, 0, len(shell.All()))
	for _, s := range shell.All() {
		valid = append(valid, string(s))
	}
	return &Command{
		Name:      "completion",
		Short:     "Generate the autocompletion script for the specified shell",
		Long:      "Generate the autocompletion script for bash, zsh or fish.\nThe script calls back into the program on every tab press.",
		Example:   "  source <(app completion bash)\n  app completion fish | source",
		Args:      MatchAll(ExactArgs(1), OnlyValidArgs(valid...)),
		ValidArgs: valid,
		Run: func(ctx *Context) error {
			root := ctx.Root()
			return root.GenerateCompletion(root.OutOrStdout(), ctx.Arg(0))
		},
	}
}
