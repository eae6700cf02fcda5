package flagtree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteProtocolDialects(t *testing.T) {
	tests := []struct {
		name  string
		shell string
		want  string
	}{
		{"bash", "bash", "pod-a\npod-b\n"},
		{"zsh", "zsh", "pod-a:Running pod\npod-b:Pending pod\n"},
		{"fish", "fish", "pod-a\tRunning pod\npod-b\tPending pod\n"},
		{"unset defaults to bash", "", "pod-a\npod-b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := newKubectl(t)
			s := DefaultSettings()
			s.Shell = tt.shell
			k.root.SetSettings(s)

			require.NoError(t, k.root.Execute([]string{CompleteCommandName, "get", ""}))
			assert.Equal(t, tt.want, k.out.String())
			assert.Nil(t, k.got, "completion must not run the command")
		})
	}
}

func TestCompleteProtocolFromEnvironment(t *testing.T) {
	k := newKubectl(t)
	k.root.SetEnviron([]string{"KUBECTL_COMPLETE=zsh"})

	require.NoError(t, k.root.Execute([]string{CompleteCommandName, "de"}))
	assert.Equal(t, "delete:Delete resources\ndescribe:Show details of a resource\n", k.out.String())
}

func TestCompleteProtocolActiveHelp(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"bash", "_activehelp_ pick a pod\npod-a\n"},
		{"zsh", "_activehelp_::pick a pod\npod-a\n"},
		{"fish", "_activehelp_\tpick a pod\npod-a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			k := newKubectl(t)
			s := DefaultSettings()
			s.Shell = tt.shell
			k.root.SetSettings(s)
			k.get.ArgCompletion = func(*Context, string) (*CompletionResult, error) {
				return CompleteValues("pod-a").AddHelp("pick a pod"), nil
			}

			require.NoError(t, k.root.Execute([]string{CompleteCommandName, "get", ""}))
			assert.Equal(t, tt.want, k.out.String())
		})
	}
}

func TestCompleteProtocolZshEscapesColons(t *testing.T) {
	k := newKubectl(t)
	s := DefaultSettings()
	s.Shell = "zsh"
	k.root.SetSettings(s)
	k.get.ArgCompletion = func(*Context, string) (*CompletionResult, error) {
		return NewCompletionResult().AddWithDescription("svc:http", "port\tname"), nil
	}

	require.NoError(t, k.root.Execute([]string{CompleteCommandName, "get", ""}))
	assert.Equal(t, "svc\\:http:port name\n", k.out.String())
}

func TestCompleteProtocolDegradesOnCallbackError(t *testing.T) {
	k := newKubectl(t)
	k.get.ArgCompletion = func(*Context, string) (*CompletionResult, error) {
		return nil, errors.New("cluster unreachable")
	}

	require.NoError(t, k.root.Execute([]string{CompleteCommandName, "get", ""}))
	assert.Empty(t, k.out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestCompleteProtocolWriteFailure(t *testing.T) {
	k := newKubectl(t)
	k.root.SetOut(failingWriter{})

	requireKind(t, k.root.Execute([]string{CompleteCommandName, ""}), KindIO)
}

func TestGenerateCompletion(t *testing.T) {
	k := newKubectl(t)

	for _, sh := range []string{"bash", "zsh", "fish"} {
		t.Run(sh, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, k.root.GenerateCompletion(&buf, sh))
			assert.Contains(t, buf.String(), CompleteCommandName)
			assert.Contains(t, buf.String(), "KUBECTL_COMPLETE")
		})
	}

	var buf bytes.Buffer
	fe := requireKind(t, k.root.GenerateCompletion(&buf, "powershell"), KindValidation)
	assert.Equal(t, "powershell", fe.Received)
	assert.Empty(t, buf.String())

	requireKind(t, k.root.GenerateCompletion(failingWriter{}, "bash"), KindIO)
}

func TestCompletionCommand(t *testing.T) {
	k := newKubectl(t)
	require.NoError(t, k.root.AddCommand(CompletionCommand()))

	require.NoError(t, k.root.Execute([]string{"completion", "fish"}))
	assert.Contains(t, k.out.String(), "complete -c kubectl")

	fe := requireKind(t, k.root.Execute([]string{"completion", "fishh"}), KindArgumentParsing)
	assert.Equal(t, []string{"fish"}, fe.Suggestions)

	requireKind(t, k.root.Execute([]string{"completion"}), KindArgumentParsing)

	k.out.Reset()
	require.NoError(t, k.root.Execute([]string{CompleteCommandName, "completion", "z"}))
	assert.Equal(t, "zsh\n", k.out.String())
}
