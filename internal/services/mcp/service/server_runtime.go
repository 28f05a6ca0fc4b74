package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the bind address for the HTTP transport (e.g. "localhost:3000").
	HTTPAddr string
	// MaxBodySize caps POST /mcp bodies in bytes. Zero selects the default.
	MaxBodySize int64
	// RequestTimeout bounds body reads and dispatch for one HTTP request.
	RequestTimeout time.Duration
	// MaxConnections caps concurrent HTTP connections; zero is unlimited.
	MaxConnections int
	RateLimitRPS   float64
	RateLimitBurst int
	// MetricsPath exposes Prometheus metrics when non-empty.
	MetricsPath string
}

// Run is the service entrypoint for MCP and blocks until context cancellation
// or, on stdio, until the peer disconnects.
func Run(ctx context.Context, cfg Config, store *catalog.Store) error {
	if store == nil {
		return errors.New("catalog store is required")
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, store, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg, store)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport binds one server to transport for the process lifetime.
// Each call reads the store's current snapshot, so reloads are visible.
func runWithTransport(ctx context.Context, store *catalog.Store, transport mcp.Transport) error {
	server, err := New(store.Snapshot)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

func runWithHTTPTransport(ctx context.Context, cfg Config, store *catalog.Store) error {
	httpTransport := NewHTTPTransport(cfg.HTTPAddr, store)
	httpTransport.applyConfig(cfg)
	return httpTransport.Start(ctx)
}
