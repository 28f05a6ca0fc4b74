package service

import (
	"fmt"

	"github.com/louisbranch/plugin-catalog/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

func (k mcpRegistrationKind) String() string {
	switch k {
	case mcpRegistrationKindTools:
		return "tools"
	case mcpRegistrationKindResources:
		return "resources"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpCatalogToolsModuleName    = "catalog-tools"
	mcpCatalogResourceModuleName = "catalog-resources"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResourceTemplate(resourceTemplate *mcp.ResourceTemplate, handler mcp.ResourceHandler) {
	r.server.AddResourceTemplate(resourceTemplate, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

// mcpToolRegistrar recovers the typed handler behind an any so mcp.AddTool
// can infer its generic parameters.
type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.ListPluginsInput, any](),
	newMCPToolRegistrar[domain.GetPluginInput, any](),
	newMCPToolRegistrar[domain.SearchPluginsInput, any](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

// registrationError names the module and what it was registering.
func (m mcpRegistrationModule) registrationError(err error) error {
	return fmt.Errorf("register MCP %s module %q: %w", m.kind, m.name, err)
}

func newMCPRegistrationModules(source domain.CatalogSource) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpCatalogToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerCatalogTools(registrar, source)
			},
		},
		{
			name: mcpCatalogResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerCatalogResources(registrar, source)
				return nil
			},
		},
	}
}
