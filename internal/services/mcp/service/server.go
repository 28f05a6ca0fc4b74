package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/plugin-catalog/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "claude-plugins"
	// serverVersion identifies the MCP server version.
	serverVersion = "1.0.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio serves a single MCP connection over standard input/output.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves one isolated MCP session per HTTP POST.
	TransportHTTP TransportKind = "http"
)

// Server hosts an MCP server bound to one catalog source.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server whose procedures and resources read the catalog
// returned by source on every call.
func New(source domain.CatalogSource) (*Server, error) {
	mcpServer, err := newMCPServer(source)
	if err != nil {
		return nil, err
	}
	return &Server{mcpServer: mcpServer}, nil
}

// newMCPServer builds the MCP runtime and registers every catalog module.
// The HTTP transport calls it once per request.
func newMCPServer(source domain.CatalogSource) (*mcp.Server, error) {
	if source == nil {
		return nil, errors.New("catalog source is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	for _, module := range newMCPRegistrationModules(source) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, module.registrationError(err)
		}
	}
	return mcpServer, nil
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the MCP server on transport until the peer
// disconnects or ctx ends. Cancellation is a clean stop.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
