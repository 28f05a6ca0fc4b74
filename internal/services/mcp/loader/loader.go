// Package loader discovers plugin directories on disk and builds the catalog
// served by the MCP tools.
//
// A plugin is any direct child directory of the root carrying a manifest at
// .claude-plugin/plugin.json (or plugin.yaml). Plugins are returned in lexical
// directory order.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

const (
	manifestDir     = ".claude-plugin"
	manifestJSON    = "plugin.json"
	manifestYAML    = "plugin.yaml"
	defaultVersion  = "0.0.0"
	skillFile       = "SKILL.md"
	promptFile      = "prompt.md"
	mcpServersFile  = ".mcp.json"
	skillsDirectory = "skills"
	agentsDirectory = "agents"
	markdownSuffix  = ".md"
)

// manifest is the on-disk plugin descriptor. Pointer fields distinguish an
// absent key from an empty value.
type manifest struct {
	Name        *string  `json:"name" yaml:"name"`
	Description *string  `json:"description" yaml:"description"`
	Version     *string  `json:"version" yaml:"version"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// Loader reads a plugins root directory.
type Loader struct {
	root string
	logf func(format string, args ...any)
}

// Option customizes a Loader.
type Option func(*Loader)

// WithLogf routes loader warnings to logf instead of the standard logger.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(l *Loader) {
		if logf != nil {
			l.logf = logf
		}
	}
}

// New creates a loader rooted at root.
func New(root string, opts ...Option) *Loader {
	l := &Loader{root: root, logf: log.Printf}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the directory the loader scans.
func (l *Loader) Root() string {
	return l.root
}

// LoadCatalog loads every plugin under the root and builds a catalog.
func (l *Loader) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	plugins, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.New(plugins), nil
}

// Load returns the plugins under the root in lexical directory order. A
// missing root yields an empty result and a warning. A malformed manifest or
// an unreadable component file fails the whole load.
func (l *Loader) Load(ctx context.Context) ([]catalog.Plugin, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			l.logf("plugins directory %s does not exist; serving an empty catalog", l.root)
			return []catalog.Plugin{}, nil
		}
		return nil, fmt.Errorf("read plugins directory: %w", err)
	}

	plugins := []catalog.Plugin{}
	seen := make(map[string]string)
	fold := cases.Fold()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(l.root, entry.Name())
		if !isDir(dir) {
			continue
		}
		manifestPath, ok := findManifest(dir)
		if !ok {
			continue
		}
		plugin, err := l.loadPlugin(dir, manifestPath)
		if err != nil {
			return nil, err
		}
		key := fold.String(plugin.Name)
		if prev, dup := seen[key]; dup {
			l.logf("plugin %q in %s duplicates %s; lookups by name resolve to the first", plugin.Name, dir, prev)
		} else {
			seen[key] = dir
		}
		plugins = append(plugins, plugin)
	}
	return plugins, nil
}

func (l *Loader) loadPlugin(dir, manifestPath string) (catalog.Plugin, error) {
	m, err := readManifest(manifestPath)
	if err != nil {
		return catalog.Plugin{}, err
	}

	plugin := catalog.Plugin{
		Name:    filepath.Base(dir),
		Version: defaultVersion,
		Tags:    m.Keywords,
	}
	if m.Name != nil {
		plugin.Name = *m.Name
	}
	if m.Description != nil {
		plugin.Description = *m.Description
	}
	if m.Version != nil {
		plugin.Version = *m.Version
	}
	if _, err := semver.NewVersion(plugin.Version); err != nil {
		l.logf("plugin %q has non-semver version %q", plugin.Name, plugin.Version)
	}

	if plugin.Skill, err = firstSkill(dir); err != nil {
		return catalog.Plugin{}, err
	}
	if plugin.Agent, err = firstAgent(dir); err != nil {
		return catalog.Plugin{}, err
	}
	if plugin.Prompt, err = readOptional(filepath.Join(dir, promptFile)); err != nil {
		return catalog.Plugin{}, err
	}
	if plugin.MCPs, err = readMCPServers(filepath.Join(dir, mcpServersFile)); err != nil {
		return catalog.Plugin{}, err
	}
	plugin.HasMCPs = plugin.MCPs != nil
	return plugin, nil
}

func findManifest(dir string) (string, bool) {
	for _, name := range []string{manifestJSON, manifestYAML} {
		path := filepath.Join(dir, manifestDir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

func readManifest(path string) (manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, apperrors.Wrap(apperrors.CodeManifestInvalid, fmt.Sprintf("read manifest %s", path), err)
	}
	var m manifest
	if strings.HasSuffix(path, manifestYAML) {
		err = yaml.Unmarshal(data, &m)
	} else {
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return manifest{}, apperrors.Wrap(apperrors.CodeManifestInvalid, fmt.Sprintf("parse manifest %s: %v", path, err), err)
	}
	return m, nil
}

// firstSkill returns the body of the lexically first skills/*/SKILL.md.
func firstSkill(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, skillsDirectory, "*", skillFile))
	if err != nil {
		return "", err
	}
	for _, match := range matches {
		if isFile(match) {
			return readFile(match)
		}
	}
	return "", nil
}

// firstAgent returns the body of the lexically first agents/*.md file.
func firstAgent(dir string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, agentsDirectory))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read agents directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), markdownSuffix) {
			continue
		}
		return readFile(filepath.Join(dir, agentsDirectory, entry.Name()))
	}
	return "", nil
}

func readMCPServers(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, apperrors.New(apperrors.CodeManifestInvalid, fmt.Sprintf("parse %s: invalid JSON", path))
	}
	return json.RawMessage(data), nil
}

func readOptional(path string) (string, error) {
	if !isFile(path) {
		return "", nil
	}
	return readFile(path)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
