package domain

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CatalogSource returns the catalog snapshot a call should query.
type CatalogSource func() *catalog.Catalog

// StaticCatalog returns a source that always serves cat.
func StaticCatalog(cat *catalog.Catalog) CatalogSource {
	return func() *catalog.Catalog { return cat }
}

// ListPluginsTool defines the MCP tool schema for listing plugins.
func ListPluginsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_plugins",
		Description: "List available plugins, optionally filtered by component type or tag",
		InputSchema: inputSchema[ListPluginsInput]("type"),
	}
}

// GetPluginTool defines the MCP tool schema for fetching a plugin.
func GetPluginTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_plugin",
		Description: "Get a plugin's full details or a specific component's content",
		InputSchema: inputSchema[GetPluginInput]("component"),
	}
}

// SearchPluginsTool defines the MCP tool schema for keyword search.
func SearchPluginsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "search_plugins",
		Description: "Search plugins by keyword across name, description, and tags",
		InputSchema: inputSchema[SearchPluginsInput]("type"),
	}
}

// ListPluginsHandler executes a plugin listing.
func ListPluginsHandler(source CatalogSource) mcp.ToolHandlerFor[ListPluginsInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ListPluginsInput) (*mcp.CallToolResult, any, error) {
		filter, err := input.Validate()
		if err != nil {
			return nil, nil, protocolError(err)
		}
		return jsonResult(source().List(filter))
	}
}

// GetPluginHandler executes a plugin lookup.
func GetPluginHandler(source CatalogSource) mcp.ToolHandlerFor[GetPluginInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input GetPluginInput) (*mcp.CallToolResult, any, error) {
		query, err := input.Validate()
		if err != nil {
			return nil, nil, protocolError(err)
		}
		cat := source()
		if query.Component != "" {
			content, err := cat.GetComponent(query.Name, query.Component)
			if err != nil {
				return queryError(err)
			}
			return textResult(content), nil, nil
		}
		plugin, err := cat.Get(query.Name)
		if err != nil {
			return queryError(err)
		}
		return jsonResult(plugin)
	}
}

// SearchPluginsHandler executes a keyword search.
func SearchPluginsHandler(source CatalogSource) mcp.ToolHandlerFor[SearchPluginsInput, any] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SearchPluginsInput) (*mcp.CallToolResult, any, error) {
		query, err := input.Validate()
		if err != nil {
			return nil, nil, protocolError(err)
		}
		return jsonResult(source().Search(query.Query, query.Type))
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	text, err := marshalPretty(v)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

// queryError renders lookup failures as an error envelope. Anything else is
// returned to the SDK unchanged.
func queryError(err error) (*mcp.CallToolResult, any, error) {
	if !apperrors.CodeOf(err).Logical() {
		return nil, nil, err
	}
	result := textResult(err.Error())
	result.IsError = true
	return result, nil, nil
}

// protocolError converts a validation failure into a JSON-RPC error so the
// SDK reports it at the protocol level.
func protocolError(err error) error {
	var domainErr *apperrors.Error
	if !stderrors.As(err, &domainErr) {
		domainErr = apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	}
	return domainErr.ToRPCError()
}

// marshalPretty renders v with two-space indentation and without HTML
// escaping, so descriptions round-trip as written.
func marshalPretty(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
