package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cristianoliveira/flagtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newDemo(t *testing.T, inv Inventory) (*flagtree.Command, *bytes.Buffer) {
	t.Helper()
	root, err := NewRoot(Options{Inventory: inv})
	require.NoError(t, err)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetEnviron([]string{})
	return root, &out
}

func TestGetFormats(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		root, out := newDemo(t, SampleInventory())
		require.NoError(t, root.Execute([]string{"get", "pod"}))
		assert.Contains(t, out.String(), "NAME")
		assert.Contains(t, out.String(), "web-7d9f")
		assert.Contains(t, out.String(), "db-0")
		assert.NotContains(t, out.String(), "coredns")
		assert.NotContains(t, out.String(), "NAMESPACE")
	})

	t.Run("wide", func(t *testing.T) {
		root, out := newDemo(t, SampleInventory())
		require.NoError(t, root.Execute([]string{"get", "pod", "-o", "wide"}))
		assert.Contains(t, out.String(), "NAMESPACE")
		assert.Contains(t, out.String(), "app=web")
	})

	t.Run("json", func(t *testing.T) {
		root, out := newDemo(t, SampleInventory())
		require.NoError(t, root.Execute([]string{"-n", "kube-system", "get", "pod", "--output=json"}))
		var got []Resource
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "coredns-5d78", got[0].Name)
	})

	t.Run("yaml", func(t *testing.T) {
		root, out := newDemo(t, SampleInventory())
		require.NoError(t, root.Execute([]string{"get", "pod", "db-0", "-o", "yaml"}))
		var got []Resource
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Running", got[0].Status)
	})

	t.Run("empty", func(t *testing.T) {
		root, out := newDemo(t, SampleInventory())
		require.NoError(t, root.Execute([]string{"-n", "nowhere", "get", "pod"}))
		assert.Equal(t, "No resources found.\n", out.String())
	})
}

func TestGetFilters(t *testing.T) {
	root, out := newDemo(t, SampleInventory())
	require.NoError(t, root.Execute([]string{"get", "pod", "-l", "app=web", "--limit", "1", "-o", "json"}))
	var got []Resource
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "web-7d9f", got[0].Name)

	err := root.Execute([]string{"get", "pod", "-l", "broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")
}

func TestGetValidation(t *testing.T) {
	root, _ := newDemo(t, SampleInventory())

	tests := []struct {
		name string
		args []string
		kind flagtree.ErrorKind
	}{
		{"missing kind", []string{"get"}, flagtree.KindArgumentParsing},
		{"unknown kind", []string{"get", "pdo"}, flagtree.KindArgumentParsing},
		{"bad output", []string{"get", "pod", "-o", "xml"}, flagtree.KindFlagParsing},
		{"limit out of range", []string{"get", "pod", "--limit", "0"}, flagtree.KindFlagParsing},
		{"unknown command", []string{"gte"}, flagtree.KindCommandNotFound},
		{"no subcommand", nil, flagtree.KindSubcommandRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := root.Execute(tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.kind, flagtree.KindOf(err))
		})
	}

	var fe *flagtree.Error
	require.ErrorAs(t, root.Execute([]string{"get", "pdo"}), &fe)
	assert.Equal(t, []string{"pod"}, fe.Suggestions)
}

func TestDelete(t *testing.T) {
	inv := SampleInventory()
	root, out := newDemo(t, inv)

	require.NoError(t, root.Execute([]string{"rm", "pod", "web-a1c2", "--dry-run", "client"}))
	assert.Equal(t, "pod \"web-a1c2\" deleted (dry run)\n", out.String())
	pods, err := inv.List(context.Background(), "pod", "default")
	require.NoError(t, err)
	assert.Len(t, pods, 3)

	out.Reset()
	require.NoError(t, root.Execute([]string{"delete", "pod", "web-a1c2", "db-0", "--now", "--force"}))
	assert.Equal(t, "pod \"web-a1c2\" deleted\npod \"db-0\" deleted\n", out.String())
	pods, err = inv.List(context.Background(), "pod", "default")
	require.NoError(t, err)
	assert.Len(t, pods, 1)

	err = root.Execute([]string{"delete", "pod", "web-7d9f", "--now", "--grace-period", "5"})
	assert.Equal(t, flagtree.KindValidation, flagtree.KindOf(err))

	err = root.Execute([]string{"delete", "pod", "web-7d9f", "--force"})
	assert.Equal(t, flagtree.KindValidation, flagtree.KindOf(err))

	err = root.Execute([]string{"delete", "pod", "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestDescribe(t *testing.T) {
	root, out := newDemo(t, SampleInventory())
	require.NoError(t, root.Execute([]string{"describe", "service", "web"}))
	assert.Contains(t, out.String(), "Kind:")
	assert.Contains(t, out.String(), "ClusterIP")

	err := root.Execute([]string{"describe", "service"})
	assert.Equal(t, flagtree.KindArgumentParsing, flagtree.KindOf(err))
}

func TestConfigShowAndVersion(t *testing.T) {
	root, out := newDemo(t, SampleInventory())
	root.SetEnviron([]string{"KUBEDEMO_COMPLETION_TIMEOUT=250ms", "KUBEDEMO_SUGGESTION_DISTANCE=oops"})

	require.NoError(t, root.Execute([]string{"config", "show"}))
	assert.Regexp(t, `completion_timeout = ["']250ms["']`, out.String())
	assert.Contains(t, out.String(), "suggestion_distance = 2")

	out.Reset()
	require.NoError(t, root.Execute([]string{"version"}))
	assert.Contains(t, out.String(), "kubedemo version ")

	out.Reset()
	require.NoError(t, root.Execute([]string{"--help"}))
	assert.Contains(t, out.String(), "Settings Commands:")
}

func TestResourceCompletion(t *testing.T) {
	root, _ := newDemo(t, SampleInventory())
	ctx := context.Background()

	res, err := root.Complete(ctx, []string{"get", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"deployment", "pod", "service"}, res.Values())
	assert.Equal(t, []string{"choose a resource kind"}, res.Messages())

	res, err = root.Complete(ctx, []string{"delete", "pod", "web-7d9f", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-a1c2", "db-0"}, res.Values())

	res, err = root.Complete(ctx, []string{"-n", "kube-system", "get", "service", ""})
	require.NoError(t, err)
	assert.Equal(t, []flagtree.Item{{Value: "kube-dns", Description: "ClusterIP"}}, res.Items)

	res, err = root.Complete(ctx, []string{"get", "--namespace", "k"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kube-system"}, res.Values())

	res, err = root.Complete(ctx, []string{"get", "widget", ""})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, []string{"unknown resource kind widget"}, res.Messages())

	res, err = root.Complete(ctx, []string{"describe", "pod", "db-0", ""})
	require.NoError(t, err)
	assert.Contains(t, res.Messages(), "describe takes a single name")
}

func TestCompletionSeesDeletes(t *testing.T) {
	root, _ := newDemo(t, SampleInventory())
	ctx := context.Background()

	res, err := root.Complete(ctx, []string{"get", "pod", "web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-7d9f", "web-a1c2"}, res.Values())

	require.NoError(t, root.Execute([]string{"delete", "pod", "web-a1c2"}))

	res, err = root.Complete(ctx, []string{"get", "pod", "web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-7d9f"}, res.Values())
}

func TestSlowInventoryTimesOut(t *testing.T) {
	inv := SampleInventory()
	inv.SetLatency(time.Second)
	root, _ := newDemo(t, inv)
	s := flagtree.DefaultSettings()
	s.CompletionTimeout = 20 * time.Millisecond
	root.SetSettings(s)

	res, err := root.Complete(context.Background(), []string{"get", "pod", ""})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	require.Len(t, res.Messages(), 1)
	assert.Contains(t, res.Messages()[0], "timed out")
}

func TestLoadInventory(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	require.NoError(t, os.WriteFile(good, []byte(`
[[resource]]
kind = "pod"
name = "api-0"
status = "Running"
labels = { app = "api" }

[[resource]]
kind = "pod"
name = "api-1"
namespace = "staging"
`), 0600))

	inv, err := LoadInventory(good)
	require.NoError(t, err)
	pods, err := inv.List(context.Background(), "pod", "default")
	require.NoError(t, err)
	require.Len(t, pods, 1)
	assert.Equal(t, map[string]string{"app": "api"}, pods[0].Labels)

	ns, err := inv.Namespaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "staging"}, ns)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[[resource]]\nkind = \"pod\"\n"), 0600))
	_, err = LoadInventory(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a kind and a name")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[[resource]\n"), 0600))
	_, err = LoadInventory(broken)
	require.Error(t, err)
}
