package shell

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/syntax"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Shell
		wantErr bool
	}{
		{"bash", Bash, false},
		{"ZSH", Zsh, false},
		{" fish ", Fish, false},
		{"powershell", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFromEnv(t *testing.T) {
	assert.Equal(t, Zsh, FromEnv("zsh"))
	assert.Equal(t, Bash, FromEnv(""))
	assert.Equal(t, Bash, FromEnv("tcsh"))
}

func TestFormatCandidate(t *testing.T) {
	tests := []struct {
		name  string
		shell Shell
		in    Candidate
		want  string
	}{
		{"bash drops description", Bash, Candidate{"pods", "List pods"}, "pods"},
		{"zsh with description", Zsh, Candidate{"pods", "List pods"}, "pods:List pods"},
		{"zsh without description has no colon", Zsh, Candidate{"pods", ""}, "pods"},
		{"zsh escapes colons in value", Zsh, Candidate{"host:80", "addr"}, `host\:80:addr`},
		{"fish with description", Fish, Candidate{"pods", "List pods"}, "pods\tList pods"},
		{"fish without description", Fish, Candidate{"pods", ""}, "pods"},
		{"first line only", Fish, Candidate{"x", "one\ntwo"}, "x\tone"},
		{"tabs replaced", Fish, Candidate{"x", "a\tb"}, "x\ta b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shell.FormatCandidate(tt.in))
		})
	}
}

func TestFormatActiveHelp(t *testing.T) {
	assert.Equal(t, "_activehelp_ pick a pod", Bash.FormatActiveHelp("pick a pod"))
	assert.Equal(t, "_activehelp_::pick a pod", Zsh.FormatActiveHelp("pick a pod"))
	assert.Equal(t, "_activehelp_\tpick a pod", Fish.FormatActiveHelp("pick a pod"))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Zsh,
		[]Candidate{{"pods", "List pods"}, {"services", ""}},
		[]string{"namespace is default"})
	require.NoError(t, err)
	assert.Equal(t, "_activehelp_::namespace is default\npods:List pods\nservices\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestWriteError(t *testing.T) {
	err := Write(failingWriter{}, Bash, []Candidate{{"a", ""}}, nil)
	require.Error(t, err)
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "KUBECTL_COMPLETE", EnvVar("kubectl"))
	assert.Equal(t, "MY_TOOL_COMPLETE", EnvVar("my-tool"))
}

func TestScriptBashParses(t *testing.T) {
	for _, program := range []string{"kubectl", "my-tool"} {
		t.Run(program, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Script(&buf, Bash, program))
			script := buf.String()

			_, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(script), program+".bash")
			require.NoError(t, err)

			assert.Contains(t, script, EnvVar(program)+"=bash")
			assert.Contains(t, script, CompleteCommand)
			assert.Contains(t, script, "complete -F _"+identifier(program)+"_complete "+program)
			assert.NotContains(t, script, "@PROGRAM@")
			assert.NotContains(t, script, "@FUNC@")
		})
	}
}

func TestScriptZsh(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Script(&buf, Zsh, "kubectl"))
	script := buf.String()
	assert.True(t, strings.HasPrefix(script, "#compdef kubectl\n"))
	assert.Contains(t, script, "KUBECTL_COMPLETE=zsh")
	assert.Contains(t, script, "compadd -x")
	assert.Contains(t, script, "compdef _kubectl kubectl")
}

func TestScriptFish(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Script(&buf, Fish, "kubectl"))
	script := buf.String()
	assert.Contains(t, script, "commandline -opc")
	assert.Contains(t, script, "env KUBECTL_COMPLETE=fish")
	assert.Contains(t, script, "complete -c kubectl -f -a '(__kubectl_complete)'")
}

func TestScriptQuotesProgram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Script(&buf, Bash, "my tool"))
	assert.Contains(t, buf.String(), "complete -F _my_tool_complete 'my tool'")
}

func TestScriptUnsupported(t *testing.T) {
	require.Error(t, Script(&bytes.Buffer{}, Shell("tcsh"), "kubectl"))
}
