package flagtree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindCommandNotFound, ErrCommandNotFound},
		{KindSubcommandRequired, ErrSubcommandRequired},
		{KindFlagParsing, ErrFlagParsing},
		{KindArgumentParsing, ErrArgumentParsing},
		{KindValidation, ErrValidation},
		{KindCompletion, ErrCompletion},
		{KindIO, ErrIO},
		{KindDuplicateName, ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Kind: tt.kind})
			require.ErrorIs(t, err, tt.sentinel)
			require.Equal(t, tt.kind, KindOf(err))
			if tt.sentinel != ErrIO {
				require.NotErrorIs(t, err, ErrIO)
			}
		})
	}
}

func TestKindOfApplicationError(t *testing.T) {
	assert.Equal(t, KindCustom, KindOf(errors.New("boom")))
	assert.Equal(t, "custom", KindCustom.String())
	assert.Equal(t, "ErrorKind(99)", ErrorKind(99).String())
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := ioError("write help", cause)
	assert.Equal(t, "write help: disk full", e.Error())
	assert.ErrorIs(t, e, cause)

	empty := &Error{Kind: KindValidation}
	assert.Equal(t, "validation", empty.Error())
}

func TestErrorFormat(t *testing.T) {
	e := commandNotFound("gett", "kubectl", []string{"get"})
	out := e.Format(false)
	assert.Contains(t, out, `Error: unknown command "gett" for "kubectl"`)
	assert.Contains(t, out, "Did you mean this?")
	assert.Contains(t, out, "  • get")

	hint := invalidFlagValue(ChoiceFlag("output", "json", "yaml"), "xml", nil).Format(false)
	assert.NotContains(t, hint, "Did you mean this?")
	assert.Contains(t, hint, "  • use one of: json, yaml")

	inner := errors.New("inner")
	wrapped := &Error{Kind: KindCompletion, Message: "completion callback failed", Cause: fmt.Errorf("outer: %w", inner)}
	verbose := wrapped.Format(true)
	assert.Contains(t, verbose, "Error chain:")
	assert.Contains(t, verbose, "1. outer: inner")
	assert.Contains(t, verbose, "2. inner")
	assert.NotContains(t, wrapped.Format(false), "Error chain:")
}
