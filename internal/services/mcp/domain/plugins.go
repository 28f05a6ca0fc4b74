package domain

import (
	"strings"

	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
)

// ListPluginsInput represents the MCP tool input for listing plugins.
type ListPluginsInput struct {
	Type string `json:"type,omitempty" jsonschema:"Filter to plugins that have this component type"`
	Tag  string `json:"tag,omitempty" jsonschema:"Filter to plugins that have this tag"`
}

// GetPluginInput represents the MCP tool input for fetching one plugin.
type GetPluginInput struct {
	Name      string `json:"name" jsonschema:"Plugin name"`
	Component string `json:"component,omitempty" jsonschema:"If specified, return only this component's content"`
}

// SearchPluginsInput represents the MCP tool input for keyword search.
type SearchPluginsInput struct {
	Query string `json:"query" jsonschema:"Search query"`
	Type  string `json:"type,omitempty" jsonschema:"Filter to plugins that have this component type"`
}

// GetQuery is a validated get_plugin request. An empty Component asks for
// the whole plugin.
type GetQuery struct {
	Name      string
	Component catalog.ComponentType
}

// SearchQuery is a validated search_plugins request.
type SearchQuery struct {
	Query string
	Type  catalog.ComponentType
}

// Validate converts the input into a list filter.
func (in ListPluginsInput) Validate() (catalog.ListFilter, error) {
	componentType, err := optionalComponent("type", in.Type)
	if err != nil {
		return catalog.ListFilter{}, err
	}
	return catalog.ListFilter{Type: componentType, Tag: in.Tag}, nil
}

// Validate converts the input into a get query.
func (in GetPluginInput) Validate() (GetQuery, error) {
	component, err := optionalComponent("component", in.Component)
	if err != nil {
		return GetQuery{}, err
	}
	return GetQuery{Name: in.Name, Component: component}, nil
}

// Validate converts the input into a search query.
func (in SearchPluginsInput) Validate() (SearchQuery, error) {
	componentType, err := optionalComponent("type", in.Type)
	if err != nil {
		return SearchQuery{}, err
	}
	return SearchQuery{Query: in.Query, Type: componentType}, nil
}

func optionalComponent(field, raw string) (catalog.ComponentType, error) {
	if raw == "" {
		return "", nil
	}
	c, err := catalog.ParseComponentType(raw)
	if err != nil {
		return "", apperrors.WithMetadata(
			apperrors.CodeInvalidArgument,
			"invalid "+field+": "+err.Error(),
			map[string]string{"field": field, "value": raw},
		)
	}
	return c, nil
}

func componentEnum() []any {
	values := make([]any, 0, len(catalog.ComponentTypes()))
	for _, c := range catalog.ComponentTypes() {
		values = append(values, string(c))
	}
	return values
}

func componentNames() string {
	names := make([]string, 0, len(catalog.ComponentTypes()))
	for _, c := range catalog.ComponentTypes() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
