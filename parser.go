package flagtree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cristianoliveira/flagtree/internal/suggest"
	"github.com/spf13/pflag"
)

type tokenKind int

const (
	tokPositional tokenKind = iota
	tokLong
	tokShort
	tokTerminator
)

// token is one classified argv element.
type token struct {
	kind     tokenKind
	raw      string
	name     string // long name, or the shorthand letters of a short group
	value    string // inline value after '='
	hasValue bool
}

// tokenize classifies args. Everything after "--" is positional.
func tokenize(args []string) []token {
	tokens := make([]token, 0, len(args))
	terminated := false
	for _, a := range args {
		switch {
		case terminated:
			tokens = append(tokens, token{kind: tokPositional, raw: a})
		case a == "--":
			terminated = true
			tokens = append(tokens, token{kind: tokTerminator, raw: a})
		case strings.HasPrefix(a, "--"):
			t := token{kind: tokLong, raw: a, name: a[2:]}
			if i := strings.IndexByte(t.name, '='); i >= 0 {
				t.name, t.value, t.hasValue = t.name[:i], t.name[i+1:], true
			}
			tokens = append(tokens, t)
		case len(a) > 1 && a[0] == '-':
			t := token{kind: tokShort, raw: a, name: a[1:]}
			if i := strings.IndexByte(t.name, '='); i >= 0 {
				t.name, t.value, t.hasValue = t.name[:i], t.name[i+1:], true
			}
			tokens = append(tokens, t)
		default:
			tokens = append(tokens, token{kind: tokPositional, raw: a})
		}
	}
	return tokens
}

// flagScope is the set of flags visible on a resolution chain. A flag
// declared closer to the resolved command shadows an ancestor flag with the
// same name or shorthand.
type flagScope struct {
	chain   []*Command
	byName  map[string]*Flag
	byShort map[rune]*Flag
	order   []*Flag // root to leaf, shadowed flags excluded
	help    *Flag   // built-in help flag, nil when the application defines "help"
}

func newFlagScope(chain []*Command) *flagScope {
	s := &flagScope{
		chain:   chain,
		byName:  make(map[string]*Flag),
		byShort: make(map[rune]*Flag),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].flags {
			if _, taken := s.byName[f.Name]; taken {
				continue
			}
			s.byName[f.Name] = f
			if f.Shorthand != 0 {
				if _, taken := s.byShort[f.Shorthand]; !taken {
					s.byShort[f.Shorthand] = f
				}
			}
		}
	}
	for _, cmd := range chain {
		for _, f := range cmd.flags {
			if s.byName[f.Name] == f {
				s.order = append(s.order, f)
			}
		}
	}
	if _, taken := s.byName["help"]; !taken {
		leaf := chain[len(chain)-1]
		s.help = BoolFlag("help").WithUsage("help for " + leaf.Name)
		if _, taken := s.byShort['h']; !taken {
			s.help.Shorthand = 'h'
			s.byShort['h'] = s.help
		}
		s.byName["help"] = s.help
	}
	return s
}

// names lists the long names of the visible, non-hidden flags.
func (s *flagScope) names() []string {
	out := make([]string, 0, len(s.order)+1)
	for _, f := range s.order {
		if !f.Hidden {
			out = append(out, f.Name)
		}
	}
	if s.help != nil {
		out = append(out, s.help.Name)
	}
	return out
}

// inherited reports whether f is declared on an ancestor of the resolved command.
func (s *flagScope) inherited(f *Flag) bool {
	return s.chain[len(s.chain)-1].LookupFlag(f.Name) != f && f != s.help
}

// flagSet builds a fresh pflag.FlagSet holding one value per visible flag.
func (s *flagScope) flagSet() *pflag.FlagSet {
	leaf := s.chain[len(s.chain)-1]
	fs := pflag.NewFlagSet(leaf.Name, pflag.ContinueOnError)
	fs.SortFlags = false
	all := s.order
	if s.help != nil {
		all = append(append([]*Flag(nil), s.order...), s.help)
	}
	for _, f := range all {
		withShort := f.Shorthand != 0 && s.byShort[f.Shorthand] == f
		// Declarations were validated by AddFlag, so registration cannot fail.
		_, _ = f.register(fs, withShort)
	}
	return fs
}

// invocation is the outcome of parsing argv against the tree.
type invocation struct {
	chain []*Command
	scope *flagScope
	fs    *pflag.FlagSet
	args  []string
	help  bool
}

func (inv *invocation) leaf() *Command {
	return inv.chain[len(inv.chain)-1]
}

// walk resolves the command chain. Flag tokens are skipped, together with
// their value token when the flag is visible at that point and takes one.
func (c *Command) walk(tokens []token) ([]*Command, map[int]bool) {
	chain := []*Command{c}
	consumed := make(map[int]bool)
	scope := newFlagScope(chain)

loop:
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.kind {
		case tokTerminator:
			break loop
		case tokPositional:
			next := chain[len(chain)-1].child(t.raw)
			if next == nil {
				break loop
			}
			chain = append(chain, next)
			consumed[i] = true
			scope = newFlagScope(chain)
		case tokLong:
			if f := scope.byName[t.name]; f != nil && f.TakesValue() && !t.hasValue {
				i++
			}
		case tokShort:
			if shortGroupWantsNext(scope, t) {
				i++
			}
		}
	}
	return chain, consumed
}

// shortGroupWantsNext reports whether a short group ends in a value-taking
// flag whose value is the next token.
func shortGroupWantsNext(scope *flagScope, t token) bool {
	letters := []rune(t.name)
	for j, r := range letters {
		f := scope.byShort[r]
		if f == nil {
			return false
		}
		if f.TakesValue() {
			return j == len(letters)-1 && !t.hasValue
		}
	}
	return false
}

// parse resolves the command and binds flags and positional arguments.
// In lenient mode, binding problems are ignored instead of returned.
func (c *Command) parse(args []string, lenient bool, distance int) (*invocation, error) {
	tokens := tokenize(args)
	chain, consumed := c.walk(tokens)
	scope := newFlagScope(chain)
	inv := &invocation{
		chain: chain,
		scope: scope,
		fs:    scope.flagSet(),
		args:  []string{},
	}

	b := binder{inv: inv, tokens: tokens, consumed: consumed, distance: distance}
	for i := 0; i < len(tokens); i++ {
		if consumed[i] {
			continue
		}
		next, err := b.bind(i)
		if err != nil && !lenient {
			return nil, err
		}
		i = next
	}

	if scope.help != nil {
		inv.help = inv.fs.Changed(scope.help.Name)
	}
	return inv, nil
}

type binder struct {
	inv      *invocation
	tokens   []token
	consumed map[int]bool
	distance int
}

// bind processes tokens[i] and returns the index of the last token it used.
func (b *binder) bind(i int) (int, error) {
	t := b.tokens[i]
	switch t.kind {
	case tokTerminator:
		return i, nil
	case tokPositional:
		b.inv.args = append(b.inv.args, t.raw)
		return i, nil
	case tokLong:
		return b.bindLong(i, t)
	default:
		return b.bindShort(i, t)
	}
}

func (b *binder) bindLong(i int, t token) (int, error) {
	f := b.inv.scope.byName[t.name]
	if f == nil {
		return i, unknownFlag("--"+t.name, b.suggestFlags(t.name))
	}
	value := "true"
	switch {
	case t.hasValue:
		value = t.value
	case f.TakesValue():
		v, ok := b.nextValue(i)
		if !ok {
			return i, missingFlagValue(f)
		}
		value = v
		i++
	}
	return i, b.set(f, value)
}

func (b *binder) bindShort(i int, t token) (int, error) {
	letters := []rune(t.name)
	for j, r := range letters {
		f := b.inv.scope.byShort[r]
		if f == nil {
			if j == 0 && looksNumeric(t.raw) {
				b.inv.args = append(b.inv.args, t.raw)
				return i, nil
			}
			return i, unknownFlag("-"+string(r), nil)
		}
		last := j == len(letters)-1
		if !f.TakesValue() {
			value := "true"
			if last && t.hasValue {
				value = t.value
			}
			if err := b.set(f, value); err != nil {
				return i, err
			}
			continue
		}
		var value string
		switch {
		case !last:
			value = string(letters[j+1:])
			if t.hasValue {
				value += "=" + t.value
			}
		case t.hasValue:
			value = t.value
		default:
			v, ok := b.nextValue(i)
			if !ok {
				return i, missingFlagValue(f)
			}
			value = v
			i++
		}
		return i, b.set(f, value)
	}
	return i, nil
}

// nextValue returns the token after i as a flag value. Tokens that selected
// a subcommand are never taken as values.
func (b *binder) nextValue(i int) (string, bool) {
	if i+1 >= len(b.tokens) || b.consumed[i+1] || b.tokens[i+1].kind == tokTerminator {
		return "", false
	}
	return b.tokens[i+1].raw, true
}

func (b *binder) set(f *Flag, value string) error {
	if err := b.inv.fs.Set(f.Name, value); err != nil {
		return invalidFlagValue(f, value, unwrapPflagError(err))
	}
	return nil
}

func (b *binder) suggestFlags(name string) []string {
	leaf := b.inv.leaf()
	if leaf.DisableSuggestions {
		return nil
	}
	return suggest.Find(name, b.inv.scope.names(), suggestionDistance(leaf, b.distance))
}

// unwrapPflagError strips pflag's "invalid argument ... for flag" framing,
// which repeats what invalidFlagValue already reports.
func unwrapPflagError(err error) error {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && strings.HasPrefix(msg, "invalid argument") {
		return fmt.Errorf("%s", msg[i+2:])
	}
	return err
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func suggestionDistance(cmd *Command, fallback int) int {
	if cmd.SuggestionDistance > 0 {
		return cmd.SuggestionDistance
	}
	if fallback > 0 {
		return fallback
	}
	return suggest.DefaultDistance
}
