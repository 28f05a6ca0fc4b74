package catalog

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ComponentType names one of the content bodies a plugin can ship.
type ComponentType string

const (
	ComponentSkill  ComponentType = "skill"
	ComponentAgent  ComponentType = "agent"
	ComponentPrompt ComponentType = "prompt"
)

// ComponentTypes lists every component type in declaration order.
func ComponentTypes() []ComponentType {
	return []ComponentType{ComponentSkill, ComponentAgent, ComponentPrompt}
}

// ParseComponentType validates raw as a component type. Matching is exact.
func ParseComponentType(raw string) (ComponentType, error) {
	c := ComponentType(raw)
	if slices.Contains(ComponentTypes(), c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown component type %q (want one of skill, agent, prompt)", raw)
}

// Plugin is one catalog entry with its component bodies.
type Plugin struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"`
	Tags        []string        `json:"tags"`
	Components  []ComponentType `json:"components"`
	HasMCPs     bool            `json:"has_mcps"`
	Skill       string          `json:"skill,omitempty"`
	Agent       string          `json:"agent,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	MCPs        json.RawMessage `json:"mcps,omitempty"`
}

// PluginMeta is the listing projection of a Plugin without content bodies.
type PluginMeta struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"`
	Tags        []string        `json:"tags"`
	Components  []ComponentType `json:"components"`
	HasMCPs     bool            `json:"has_mcps"`
}

// Meta projects p onto its listing fields. The slices are copied.
func (p Plugin) Meta() PluginMeta {
	return PluginMeta{
		Name:        p.Name,
		Description: p.Description,
		Version:     p.Version,
		Tags:        slices.Clone(p.Tags),
		Components:  slices.Clone(p.Components),
		HasMCPs:     p.HasMCPs,
	}
}

func (p Plugin) clone() Plugin {
	out := p
	out.Tags = slices.Clone(p.Tags)
	out.Components = slices.Clone(p.Components)
	out.MCPs = slices.Clone(p.MCPs)
	return out
}

// HasComponent reports whether c is in the plugin's component set.
func (p Plugin) HasComponent(c ComponentType) bool {
	return slices.Contains(p.Components, c)
}

// Content returns the body for component c, or "" when absent.
func (p Plugin) Content(c ComponentType) string {
	switch c {
	case ComponentSkill:
		return p.Skill
	case ComponentAgent:
		return p.Agent
	case ComponentPrompt:
		return p.Prompt
	default:
		return ""
	}
}

// normalize returns a deep copy of p with the component set derived from the
// non-empty bodies, in canonical order, and nil slices replaced by empty ones.
func normalize(p Plugin) Plugin {
	out := p
	out.Tags = slices.Clone(p.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.Components = []ComponentType{}
	for _, c := range ComponentTypes() {
		if p.Content(c) != "" {
			out.Components = append(out.Components, c)
		}
	}
	if p.HasMCPs || len(p.MCPs) > 0 {
		out.HasMCPs = true
		out.MCPs = slices.Clone(p.MCPs)
	} else {
		out.MCPs = nil
	}
	return out
}
