package flagtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator PositionalArgs
		args      []string
		expected  string // empty when the args are accepted
	}{
		{"no args accepts none", NoArgs, nil, ""},
		{"no args rejects one", NoArgs, []string{"x"}, "no args"},
		{"arbitrary", ArbitraryArgs, []string{"a", "b", "c"}, ""},
		{"exact match", ExactArgs(2), []string{"a", "b"}, ""},
		{"exact too few", ExactArgs(2), []string{"a"}, "2 args"},
		{"exact singular", ExactArgs(1), nil, "1 arg"},
		{"minimum met", MinimumArgs(1), []string{"a"}, ""},
		{"minimum missed", MinimumArgs(2), []string{"a"}, "at least 2 args"},
		{"maximum met", MaximumArgs(1), []string{"a"}, ""},
		{"maximum exceeded", MaximumArgs(1), []string{"a", "b"}, "at most 1 arg"},
		{"range low bound", RangeArgs(1, 3), []string{"a"}, ""},
		{"range high bound", RangeArgs(1, 3), []string{"a", "b", "c"}, ""},
		{"range below", RangeArgs(1, 3), nil, "between 1 and 3 args"},
		{"range above", RangeArgs(1, 3), []string{"a", "b", "c", "d"}, "between 1 and 3 args"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator(tt.args)
			if tt.expected == "" {
				require.NoError(t, err)
				return
			}
			fe := requireKind(t, err, KindArgumentParsing)
			assert.Equal(t, tt.expected, fe.Expected)
			assert.Equal(t, len(tt.args), fe.ReceivedCount)
		})
	}
}

func TestOnlyValidArgs(t *testing.T) {
	v := OnlyValidArgs("pods", "services", "nodes")

	require.NoError(t, v(nil))
	require.NoError(t, v([]string{"pods", "nodes"}))

	fe := requireKind(t, v([]string{"pods", "pdos"}), KindArgumentParsing)
	assert.Equal(t, "pdos", fe.Received)
	assert.Equal(t, []string{"pods"}, fe.Suggestions)
	assert.Contains(t, fe.Error(), `invalid argument "pdos"`)

	fe = requireKind(t, v([]string{"deployments"}), KindArgumentParsing)
	assert.Empty(t, fe.Suggestions)
}

func TestCustomValidator(t *testing.T) {
	cause := errors.New("must be a pod name")
	v := Custom(func(args []string) error {
		if len(args) > 0 && args[0] == "bad" {
			return cause
		}
		return nil
	})

	require.NoError(t, v([]string{"good"}))

	err := v([]string{"bad"})
	fe := requireKind(t, err, KindArgumentParsing)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "invalid arguments: must be a pod name", fe.Error())

	passthrough := Custom(func([]string) error { return validationError("x", "custom framework error") })
	requireKind(t, passthrough(nil), KindValidation)
}

func TestMatchAll(t *testing.T) {
	v := MatchAll(ExactArgs(1), nil, OnlyValidArgs("bash", "zsh", "fish"))

	require.NoError(t, v([]string{"zsh"}))

	fe := requireKind(t, v(nil), KindArgumentParsing)
	assert.Equal(t, "1 arg", fe.Expected)

	fe = requireKind(t, v([]string{"zhs"}), KindArgumentParsing)
	assert.Equal(t, []string{"zsh"}, fe.Suggestions)
}

func TestArgsValidatorRunsOnResolvedCommand(t *testing.T) {
	k := newKubectl(t)
	k.describe.Args = ExactArgs(1)

	requireKind(t, k.root.Execute([]string{"describe"}), KindArgumentParsing)
	require.NoError(t, k.root.Execute([]string{"describe", "pod-a"}))
}
