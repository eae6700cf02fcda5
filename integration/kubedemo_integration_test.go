//go:build integration
// +build integration

package integration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cristianoliveira/flagtree"
	"github.com/cristianoliveira/flagtree/internal/demo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/syntax"
)

type session struct {
	t       *testing.T
	root    *flagtree.Command
	out     *bytes.Buffer
	environ []string
}

func newSession(t *testing.T, environ ...string) *session {
	t.Helper()
	root, err := demo.NewRoot(demo.Options{Inventory: demo.SampleInventory()})
	require.NoError(t, err)
	s := &session{t: t, root: root, out: &bytes.Buffer{}, environ: environ}
	root.SetOut(s.out)
	return s
}

// run executes args with extra environment entries and returns stdout.
func (s *session) run(extra []string, args ...string) (string, error) {
	s.t.Helper()
	s.out.Reset()
	s.root.SetEnviron(append(append([]string(nil), s.environ...), extra...))
	err := s.root.Execute(args)
	return s.out.String(), err
}

func TestCompletionProtocolAcrossShells(t *testing.T) {
	s := newSession(t)

	tests := []struct {
		shell string
		words []string
		want  string
	}{
		{"bash", []string{"g"}, "get\n"},
		{"zsh", []string{"get", "pod", "web"}, "web-7d9f:Running\nweb-a1c2:Pending\n"},
		{"fish", []string{"rm", "service", ""}, "web\tClusterIP\n"},
		{"bash", []string{"get", "pod", "--output="}, "--output=table\n--output=wide\n--output=json\n--output=yaml\n"},
		{"zsh", []string{"get", ""}, "_activehelp_::choose a resource kind\ndeployment\npod\nservice\n"},
		{"fish", []string{"get", "pod", "--", "d"}, "db-0\tRunning\n"},
	}
	for _, tt := range tests {
		t.Run(tt.shell+" "+strings.Join(tt.words, " "), func(t *testing.T) {
			out, err := s.run([]string{"KUBEDEMO_COMPLETE=" + tt.shell}, append([]string{flagtree.CompleteCommandName}, tt.words...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestActiveHelpDisabledByConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "kubedemo.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("active_help = false\ncompletion_timeout = \"1s\"\n"), 0600))
	s := newSession(t, "KUBEDEMO_CONFIG="+cfg)

	out, err := s.run(nil, flagtree.CompleteCommandName, "get", "")
	require.NoError(t, err)
	assert.Equal(t, "deployment\npod\nservice\n", out)

	out, err = s.run(nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+cfg)
	assert.Contains(t, out, "active_help = false")

	// The environment overrides the file.
	out, err = s.run([]string{"KUBEDEMO_ACTIVE_HELP=true"}, flagtree.CompleteCommandName, "get", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "_activehelp_ choose a resource kind\n"), out)
}

func TestDebugLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "kubedemo.jsonl")
	s := newSession(t, "KUBEDEMO_LOG_FILE="+logFile, "KUBEDEMO_LOG_LEVEL=debug", "KUBEDEMO_SUGGESTION_DISTANCE=-3")

	_, err := s.run(nil, "get", "pod", "db-0")
	require.NoError(t, err)
	_, err = s.run(nil, flagtree.CompleteCommandName, "get", "pod", "")
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "{"), "not a JSON line: %s", line)
	}
	logs := string(data)
	assert.Contains(t, logs, "invalid setting")
	assert.Contains(t, logs, "resolved command")
	assert.Contains(t, logs, "completion request")
	assert.Regexp(t, `"command":\s*"kubedemo"`, logs)
}

func TestGeneratedScriptsAreWellFormed(t *testing.T) {
	s := newSession(t)

	out, err := s.run(nil, "completion", "bash")
	require.NoError(t, err)
	_, err = syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(out), "kubedemo.bash")
	require.NoError(t, err)
	assert.Contains(t, out, "KUBEDEMO_COMPLETE=bash")
	assert.Contains(t, out, "complete -F _kubedemo_complete kubedemo")

	for _, sh := range []string{"zsh", "fish"} {
		out, err := s.run(nil, "completion", sh)
		require.NoError(t, err)
		assert.Contains(t, out, fmt.Sprintf("KUBEDEMO_COMPLETE=%s", sh))
		assert.Contains(t, out, flagtree.CompleteCommandName)
	}

	_, err = s.run(nil, "completion", "tcsh")
	require.Error(t, err)
	assert.Equal(t, flagtree.KindArgumentParsing, flagtree.KindOf(err))
}

func TestErrorsAcrossTheTree(t *testing.T) {
	s := newSession(t)

	_, err := s.run(nil, "get", "pod", "--outptu", "json")
	var fe *flagtree.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"--output"}, fe.Suggestions)
	assert.Contains(t, fe.Format(false), "Did you mean this?")

	_, err = s.run(nil, "descirbe", "pod", "db-0")
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, flagtree.KindCommandNotFound, fe.Kind)
	assert.Equal(t, []string{"describe"}, fe.Suggestions)
}
