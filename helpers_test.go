package flagtree

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) hook(name string) HookFunc {
	return func(*Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, name)
		return nil
	}
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func noop(*Context) error { return nil }

// kubectl is a small tree shaped like the tool it is named after.
type kubectl struct {
	root     *Command
	get      *Command
	delete   *Command
	describe *Command
	out      *bytes.Buffer
	got      *Context
}

func newKubectl(t *testing.T) *kubectl {
	t.Helper()
	k := &kubectl{out: &bytes.Buffer{}}

	k.root = &Command{Name: "kubectl", Short: "kubectl controls the Kubernetes cluster manager"}
	require.NoError(t, k.root.AddFlag(
		StringFlag("namespace").WithShort('n').WithDefault("default").WithUsage("namespace scope"),
		BoolFlag("verbose").WithShort('v').WithUsage("verbose output"),
	))

	k.get = &Command{
		Name:  "get",
		Short: "Display one or many resources",
		Args:  MinimumArgs(1),
		Run: func(ctx *Context) error {
			k.got = ctx
			return nil
		},
		ArgCompletion: func(ctx *Context, prefix string) (*CompletionResult, error) {
			return NewCompletionResult().
				AddWithDescription("pod-a", "Running pod").
				AddWithDescription("pod-b", "Pending pod"), nil
		},
	}
	require.NoError(t, k.get.AddFlag(
		ChoiceFlag("output", "json", "yaml", "wide").WithShort('o').WithUsage("output format"),
		StringSliceFlag("label").WithShort('l').WithUsage("label selector"),
	))

	k.delete = &Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Short:   "Delete resources",
		Run: func(ctx *Context) error {
			k.got = ctx
			return nil
		},
	}
	k.describe = &Command{Name: "describe", Short: "Show details of a resource", Run: noop}

	require.NoError(t, k.root.AddCommand(k.get, k.delete, k.describe))
	k.root.SetOut(k.out)
	k.root.SetEnviron([]string{})
	return k
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, kind, fe.Kind, "error: %v", err)
	return fe
}
