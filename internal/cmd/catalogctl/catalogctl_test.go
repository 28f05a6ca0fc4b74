package catalogctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// scenarioPlugins lays out the commit, review and docs plugins.
func scenarioPlugins(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "commit", ".claude-plugin", "plugin.json"),
		`{"name":"commit","description":"Conventional commit helper","version":"1.0.0","keywords":["git","workflow"]}`)
	writeFile(t, filepath.Join(root, "commit", "skills", "commit", "SKILL.md"), "# Commit")
	writeFile(t, filepath.Join(root, "review", ".claude-plugin", "plugin.json"),
		`{"name":"review","description":"PR review assistant","version":"1.0.0","keywords":["git","quality"]}`)
	writeFile(t, filepath.Join(root, "review", "skills", "review", "SKILL.md"), "# Review")
	writeFile(t, filepath.Join(root, "review", "agents", "reviewer.md"), "reviewer")
	writeFile(t, filepath.Join(root, "docs", ".claude-plugin", "plugin.json"),
		`{"name":"docs","description":"Documentation writer","version":"0.1.0","keywords":["writing"]}`)
	writeFile(t, filepath.Join(root, "docs", "prompt.md"), "Write docs.")
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand(Config{PluginsDir: "plugins"})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func metaNames(t *testing.T, out string) []string {
	t.Helper()
	var metas []catalog.PluginMeta
	if err := json.Unmarshal([]byte(out), &metas); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	names := []string{}
	for _, m := range metas {
		names = append(names, m.Name)
	}
	return names
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(map[string]string{})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.PluginsDir != "plugins" {
		t.Fatalf("expected default plugins dir, got %q", cfg.PluginsDir)
	}

	cfg, err = ParseConfig(map[string]string{"PLUGIN_CATALOG_PLUGINS_DIR": "/srv/plugins"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.PluginsDir != "/srv/plugins" {
		t.Fatalf("expected env plugins dir, got %q", cfg.PluginsDir)
	}
}

func TestListAndSearchJSON(t *testing.T) {
	dir := scenarioPlugins(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "list all", args: []string{"list"}, want: []string{"commit", "docs", "review"}},
		{name: "list by tag", args: []string{"list", "--tag", "GIT"}, want: []string{"commit", "review"}},
		{name: "list by type", args: []string{"list", "--type", "agent"}, want: []string{"review"}},
		{name: "search description", args: []string{"search", "assistant"}, want: []string{"review"}},
		{name: "search with type", args: []string{"search", "git", "--type", "skill"}, want: []string{"commit", "review"}},
		{name: "search without match", args: []string{"search", "zzz"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--plugins-dir", dir, "--json"}, tt.args...)
			stdout, _, err := execute(t, args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if diff := cmp.Diff(tt.want, metaNames(t, stdout)); diff != "" {
				t.Fatalf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListStyledOutput(t *testing.T) {
	dir := scenarioPlugins(t)
	stdout, _, err := execute(t, "--plugins-dir", dir, "list", "--tag", "writing")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"docs", "v0.1.0", "Documentation writer", "#writing", "prompt", "1 plugin(s)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}

	stdout, _, err = execute(t, "--plugins-dir", dir, "search", "nothing-here")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(stdout, "No plugins found") {
		t.Fatalf("expected empty message, got %q", stdout)
	}
}

func TestGet(t *testing.T) {
	dir := scenarioPlugins(t)

	stdout, _, err := execute(t, "--plugins-dir", dir, "get", "REVIEW")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"review", "PR review assistant", "# Review", "reviewer"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}

	stdout, _, err = execute(t, "--plugins-dir", dir, "get", "docs", "--component", "prompt")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stdout != "Write docs.\n" {
		t.Fatalf("expected raw prompt body, got %q", stdout)
	}

	stdout, _, err = execute(t, "--plugins-dir", dir, "--json", "get", "commit")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var plugin catalog.Plugin
	if err := json.Unmarshal([]byte(stdout), &plugin); err != nil {
		t.Fatalf("decode plugin: %v", err)
	}
	if plugin.Name != "commit" || plugin.Skill != "# Commit" {
		t.Fatalf("unexpected plugin: %+v", plugin)
	}
}

func TestGetErrors(t *testing.T) {
	dir := scenarioPlugins(t)

	tests := []struct {
		name string
		args []string
		code apperrors.Code
	}{
		{name: "unknown plugin", args: []string{"get", "nope"}, code: apperrors.CodeNotFound},
		{name: "missing component", args: []string{"get", "commit", "--component", "agent"}, code: apperrors.CodeMissingComponent},
		{name: "bad component", args: []string{"get", "commit", "--component", "readme"}, code: apperrors.CodeInvalidArgument},
		{name: "bad list type", args: []string{"list", "--type", "hook"}, code: apperrors.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"--plugins-dir", dir}, tt.args...)...)
			if got := apperrors.CodeOf(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestArgumentValidation(t *testing.T) {
	if _, _, err := execute(t, "get"); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, _, err := execute(t, "search"); err == nil {
		t.Fatal("expected error for missing query")
	}
}

func TestLoaderWarningsGoToStderr(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	stdout, stderr, err := execute(t, "--plugins-dir", missing, "--json", "list")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Fatalf("expected empty list, got %q", stdout)
	}
	if !strings.Contains(stderr, "does not exist") {
		t.Fatalf("expected missing-root warning, got %q", stderr)
	}
}

func TestSyncCommands(t *testing.T) {
	dir := scenarioPlugins(t)
	writeFile(t, filepath.Join(dir, "commit", "skills", "z-extra", "SKILL.md"), "# Extra")
	dest := filepath.Join(t.TempDir(), ".claude", "commands")

	synced, err := SyncCommands(context.Background(), dir, dest)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	var plugins []string
	for _, c := range synced {
		plugins = append(plugins, c.Plugin)
	}
	if diff := cmp.Diff([]string{"commit", "commit", "review"}, plugins); diff != "" {
		t.Fatalf("synced mismatch (-want +got):\n%s", diff)
	}

	got, err := os.ReadFile(filepath.Join(dest, "commit.md"))
	if err != nil {
		t.Fatalf("read synced file: %v", err)
	}
	if string(got) != "# Extra" {
		t.Fatalf("expected last skill to win, got %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "docs.md")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("docs has no skill and should not be synced, stat err %v", err)
	}
}

func TestSyncCommandsCommand(t *testing.T) {
	dir := scenarioPlugins(t)
	dest := filepath.Join(t.TempDir(), "commands")

	stdout, _, err := execute(t, "--plugins-dir", dir, "sync-commands", "--dest", dest)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Synced: commit", "Synced: review", "Done. Synced 2 skill(s) to " + dest} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestSyncCommandsRequiresDest(t *testing.T) {
	if _, err := SyncCommands(context.Background(), t.TempDir(), " "); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	got := FormatError(&buf, errors.New("boom"))
	if !strings.Contains(got, "boom") {
		t.Fatalf("expected message in %q", got)
	}
}
