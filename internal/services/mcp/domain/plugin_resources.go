package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	catalogResourceURI    = "plugins://catalog"
	pluginResourcePrefix  = "plugins://plugin/"
	pluginResourcePattern = pluginResourcePrefix + "{name}"
	jsonMIMEType          = "application/json"
)

// CatalogResource defines the readable listing of every plugin.
func CatalogResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "plugin_catalog",
		Title:       "Plugin catalog",
		Description: "Metadata for every plugin in catalog order",
		MIMEType:    jsonMIMEType,
		URI:         catalogResourceURI,
	}
}

// PluginResourceTemplate defines the readable full record of one plugin.
func PluginResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "plugin",
		Title:       "Plugin",
		Description: "Full plugin record including component bodies. URI format: plugins://plugin/{name}",
		MIMEType:    jsonMIMEType,
		URITemplate: pluginResourcePattern,
	}
}

// CatalogResourceHandler returns the catalog listing as JSON.
func CatalogResourceHandler(source CatalogSource) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := catalogResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		text, err := marshalPretty(source().Plugins())
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, text), nil
	}
}

// PluginResourceHandler returns one plugin record as JSON.
func PluginResourceHandler(source CatalogSource) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil {
			return nil, fmt.Errorf("resource request is required")
		}
		uri := req.Params.URI
		name, err := pluginNameFromURI(uri)
		if err != nil {
			return nil, err
		}
		plugin, err := source().Get(name)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		text, err := marshalPretty(plugin)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, text), nil
	}
}

func pluginNameFromURI(uri string) (string, error) {
	raw, ok := strings.CutPrefix(uri, pluginResourcePrefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("invalid plugin resource URI %q", uri)
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid plugin resource URI %q: %w", uri, err)
	}
	return name, nil
}

func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIMEType,
				Text:     text,
			},
		},
	}
}
