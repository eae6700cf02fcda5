package flagtree

import (
	"context"
	"fmt"
	"strings"
)

// CompleteCommandName is the hidden first argument that switches Execute into completion mode.
const CompleteCommandName = "__complete"

// Complete computes the candidates for the last element of words, which is
// the partial word under the cursor; the elements before it are the words
// already typed after the program name.
//
// A failing or panicking callback yields an empty result together with a
// Completion error.
func (c *Command) Complete(ctx context.Context, words []string) (*CompletionResult, error) {
	rt := c.newRuntime()
	defer func() { _ = rt.closeLog() }()
	return c.complete(ctx, rt, words)
}

func (c *Command) complete(std context.Context, rt *runtime, words []string) (*CompletionResult, error) {
	prefix := ""
	typed := words
	if len(words) > 0 {
		prefix = words[len(words)-1]
		typed = words[:len(words)-1]
	}

	inv, _ := c.parse(typed, true, rt.settings.SuggestionDistance)
	req := &completionRequest{
		inv:    inv,
		ctx:    inv.context(std, rt),
		rt:     rt,
		prefix: prefix,
	}
	rt.logger.Debug("completion request", "path", req.ctx.CommandPath(), "prefix", prefix, "words", len(typed))

	result, err := req.run(typed)
	if result == nil {
		result = NewCompletionResult()
	}
	result.resolveHelp(req.ctx, rt.settings.ActiveHelp)
	return result, err
}

type completionRequest struct {
	inv    *invocation
	ctx    *Context
	rt     *runtime
	prefix string
}

func (r *completionRequest) run(typed []string) (*CompletionResult, error) {
	pending, terminated := r.pendingFlag(typed)
	switch {
	case pending != nil:
		return r.flagValues(pending, r.prefix, "")
	case terminated:
		return r.positional()
	case strings.HasPrefix(r.prefix, "--") && strings.Contains(r.prefix, "="):
		i := strings.IndexByte(r.prefix, '=')
		f := r.inv.scope.byName[r.prefix[2:i]]
		if f == nil || !f.TakesValue() {
			return NewCompletionResult(), nil
		}
		return r.flagValues(f, r.prefix[i+1:], r.prefix[:i+1])
	case strings.HasPrefix(r.prefix, "-"):
		return r.flagNames(), nil
	}

	if len(r.inv.args) == 0 {
		if subs := r.subcommands(); len(subs.Items) > 0 {
			return subs, nil
		}
	}
	return r.positional()
}

// pendingFlag finds a value-taking flag at the end of typed that is still
// waiting for its value, and whether "--" was seen.
func (r *completionRequest) pendingFlag(typed []string) (*Flag, bool) {
	scope := r.inv.scope
	var pending *Flag
	for _, t := range tokenize(typed) {
		if pending != nil {
			pending = nil
			continue
		}
		switch t.kind {
		case tokTerminator:
			return nil, true
		case tokLong:
			if f := scope.byName[t.name]; f != nil && f.TakesValue() && !t.hasValue {
				pending = f
			}
		case tokShort:
			if shortGroupWantsNext(scope, t) {
				letters := []rune(t.name)
				pending = scope.byShort[letters[len(letters)-1]]
			}
		}
	}
	return pending, false
}

// finish copies r so callbacks may return shared results, then filters it by prefix.
func finish(res *CompletionResult, prefix string) *CompletionResult {
	if res == nil {
		return NewCompletionResult()
	}
	out := res.Clone()
	out.filter(prefix)
	return out
}

func (r *completionRequest) subcommands() *CompletionResult {
	res := NewCompletionResult()
	for _, ch := range r.inv.leaf().children {
		if ch.Hidden {
			continue
		}
		res.AddWithDescription(ch.Name, ch.Short)
		for _, alias := range ch.Aliases {
			res.AddWithDescription(alias, "Alias for "+ch.Name)
		}
	}
	return finish(res, r.prefix)
}

func (r *completionRequest) flagNames() *CompletionResult {
	scope := r.inv.scope
	all := scope.order
	if scope.help != nil {
		all = append(append([]*Flag(nil), all...), scope.help)
	}
	res := NewCompletionResult()
	for _, f := range all {
		if f.Hidden {
			continue
		}
		if !f.Type.accumulates() && r.inv.fs.Changed(f.Name) {
			continue
		}
		res.AddWithDescription("--"+f.Name, f.Usage)
		if f.Shorthand != 0 && scope.byShort[f.Shorthand] == f {
			res.AddWithDescription("-"+string(f.Shorthand), f.Usage)
		}
	}
	return finish(res, r.prefix)
}

// flagValues completes the value of f. Candidates are emitted with emitPrefix
// prepended, so "--output=" completions stay whole words.
func (r *completionRequest) flagValues(f *Flag, prefix, emitPrefix string) (*CompletionResult, error) {
	var (
		res *CompletionResult
		err error
	)
	if fn := r.flagCompletion(f); fn != nil {
		res, err = r.invoke(fn, prefix)
	} else {
		switch f.Type {
		case TypeChoice:
			res = CompleteValues(f.Choices...)
		case TypeFile, TypeDirectory:
			res = fileCandidates(prefix, f.Type == TypeDirectory)
		}
	}
	res = finish(res, prefix)
	if emitPrefix != "" {
		for i := range res.Items {
			res.Items[i].Value = emitPrefix + res.Items[i].Value
		}
	}
	return res, err
}

// flagCompletion looks up the callback for f: the flag's own, then the
// closest command registration.
func (r *completionRequest) flagCompletion(f *Flag) CompletionFunc {
	if f.Completion != nil {
		return f.Completion
	}
	chain := r.inv.chain
	for i := len(chain) - 1; i >= 0; i-- {
		if fn, ok := chain[i].flagCompletions[f.Name]; ok && fn != nil {
			return fn
		}
	}
	return nil
}

func (r *completionRequest) positional() (*CompletionResult, error) {
	leaf := r.inv.leaf()
	if leaf.ArgCompletion != nil {
		res, err := r.invoke(leaf.ArgCompletion, r.prefix)
		return finish(res, r.prefix), err
	}
	return finish(CompleteValues(leaf.ValidArgs...), r.prefix), nil
}

// invoke runs a dynamic callback, under the timeout guard when one is configured.
func (r *completionRequest) invoke(fn CompletionFunc, prefix string) (res *CompletionResult, err error) {
	if d := r.rt.settings.CompletionTimeout; d > 0 {
		fn = WithTimeout(d, fn)
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("completion callback panicked: %v", p)
		}
		if err != nil {
			r.rt.logger.Debug("completion callback failed", "path", r.ctx.CommandPath(), "error", err)
			res, err = NewCompletionResult(), completionError(err)
		}
	}()
	return fn(r.ctx, prefix)
}
