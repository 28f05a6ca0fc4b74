package service

import (
	"fmt"

	"github.com/louisbranch/plugin-catalog/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResourceTemplate(*mcp.ResourceTemplate, mcp.ResourceHandler)
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

// registerCatalogTools registers list_plugins, get_plugin and search_plugins.
func registerCatalogTools(registrar mcpRegistrationTarget, source domain.CatalogSource) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.ListPluginsTool(), handler: domain.ListPluginsHandler(source)},
		{tool: domain.GetPluginTool(), handler: domain.GetPluginHandler(source)},
		{tool: domain.SearchPluginsTool(), handler: domain.SearchPluginsHandler(source)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerCatalogResources registers the catalog listing and the per-plugin template.
func registerCatalogResources(registrar mcpRegistrationTarget, source domain.CatalogSource) {
	registrar.AddResource(domain.CatalogResource(), domain.CatalogResourceHandler(source))
	registrar.AddResourceTemplate(domain.PluginResourceTemplate(), domain.PluginResourceHandler(source))
}
