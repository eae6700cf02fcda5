package demo

import (
	"github.com/cristianoliveira/flagtree"
	"github.com/samber/lo"
)

func (a *app) completeNamespaces(ctx *flagtree.Context, prefix string) (*flagtree.CompletionResult, error) {
	ns, err := a.inv.Namespaces(ctx.Context())
	if err != nil {
		return nil, err
	}
	return flagtree.CompleteValues(ns...), nil
}

// completeResources offers kinds for the first argument and names of that
// kind afterwards, skipping names already on the command line.
func (a *app) completeResources(ctx *flagtree.Context, prefix string) (*flagtree.CompletionResult, error) {
	if ctx.NArg() == 0 {
		return flagtree.CompleteValues(a.inv.Kinds()...).
			AddHelp("choose a resource kind"), nil
	}

	kind := ctx.Arg(0)
	if !lo.Contains(a.inv.Kinds(), kind) {
		return flagtree.NewCompletionResult().AddHelp("unknown resource kind " + kind), nil
	}
	resources, err := a.inv.List(ctx.Context(), kind, ctx.String("namespace"))
	if err != nil {
		return nil, err
	}
	typed := ctx.Args()[1:]
	res := flagtree.NewCompletionResult()
	for _, r := range resources {
		if lo.Contains(typed, r.Name) {
			continue
		}
		res.AddWithDescription(r.Name, r.Status)
	}
	if len(res.Items) == 0 {
		res.AddHelp("no " + kind + " left in namespace " + ctx.String("namespace"))
	}
	res.AddConditionalHelp("describe takes a single name", func(ctx *flagtree.Context) bool {
		return ctx.Command().Name == "describe" && ctx.NArg() >= 2
	})
	return res, nil
}
