package catalog

import (
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"golang.org/x/text/cases"
)

// Catalog is an ordered, immutable sequence of plugins.
type Catalog struct {
	plugins []Plugin
}

// New builds a catalog from plugins in the given order. The input is copied;
// later changes to it are not observed.
func New(plugins []Plugin) *Catalog {
	items := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		items = append(items, normalize(p))
	}
	return &Catalog{plugins: items}
}

// Len returns the number of plugins in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.plugins)
}

// Plugins returns a copy of every plugin in catalog order.
func (c *Catalog) Plugins() []Plugin {
	if c == nil {
		return []Plugin{}
	}
	out := make([]Plugin, 0, len(c.plugins))
	for _, p := range c.plugins {
		out = append(out, p.clone())
	}
	return out
}

// ListFilter narrows List results. Zero fields do not filter.
type ListFilter struct {
	Type ComponentType
	Tag  string
}

// List returns the metadata of every plugin that has the requested component
// and carries a tag equal to the requested tag under case folding.
func (c *Catalog) List(filter ListFilter) []PluginMeta {
	tag := fold(filter.Tag)
	results := []PluginMeta{}
	for _, p := range c.all() {
		if filter.Type != "" && !p.HasComponent(filter.Type) {
			continue
		}
		if filter.Tag != "" && !hasTag(p.Tags, tag) {
			continue
		}
		results = append(results, p.Meta())
	}
	return results
}

// Get returns the first plugin whose name equals name under case folding.
func (c *Catalog) Get(name string) (Plugin, error) {
	want := fold(name)
	for _, p := range c.all() {
		if fold(p.Name) == want {
			return p.clone(), nil
		}
	}
	return Plugin{}, apperrors.WithMetadata(
		apperrors.CodeNotFound,
		fmt.Sprintf("Plugin %q not found", name),
		map[string]string{"name": name},
	)
}

// GetComponent returns the raw body of one component of the named plugin.
func (c *Catalog) GetComponent(name string, component ComponentType) (string, error) {
	p, err := c.Get(name)
	if err != nil {
		return "", err
	}
	content := p.Content(component)
	if content == "" {
		return "", apperrors.WithMetadata(
			apperrors.CodeMissingComponent,
			fmt.Sprintf("Plugin %q has no %s component", name, component),
			map[string]string{"name": name, "component": string(component)},
		)
	}
	return content, nil
}

// Search returns the metadata of every plugin whose name, description, or
// any single tag contains query under case folding, intersected with the
// component filter when one is given. An empty query matches everything.
func (c *Catalog) Search(query string, componentType ComponentType) []PluginMeta {
	q := fold(query)
	results := []PluginMeta{}
	for _, p := range c.all() {
		if !matches(p, q) {
			continue
		}
		if componentType != "" && !p.HasComponent(componentType) {
			continue
		}
		results = append(results, p.Meta())
	}
	return results
}

func (c *Catalog) all() []Plugin {
	if c == nil {
		return nil
	}
	return c.plugins
}

func matches(p Plugin, foldedQuery string) bool {
	if strings.Contains(fold(p.Name), foldedQuery) {
		return true
	}
	if strings.Contains(fold(p.Description), foldedQuery) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(fold(t), foldedQuery) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, foldedTag string) bool {
	for _, t := range tags {
		if fold(t) == foldedTag {
			return true
		}
	}
	return false
}

var folder = cases.Fold()

// fold applies Unicode full case folding.
func fold(s string) string {
	return folder.String(s)
}
