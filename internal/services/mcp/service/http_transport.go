package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/plugin-catalog/internal/platform/otel"
	"github.com/louisbranch/plugin-catalog/internal/platform/ratelimiter"
	"github.com/louisbranch/plugin-catalog/internal/platform/timeouts"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/netutil"
)

var listenTCP = net.Listen

const (
	// DefaultMaxBodySize is the POST /mcp body ceiling when none is configured.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	mcpPath    = "/mcp"
	healthPath = "/health"

	tracerName = "github.com/louisbranch/plugin-catalog/internal/services/mcp/service"
)

// HTTPTransport serves MCP over HTTP with one isolated session per POST.
// Every request snapshots the catalog, builds a fresh MCP server for it and
// tears both down before the handler returns.
type HTTPTransport struct {
	addr           string
	store          *catalog.Store
	newServer      func(domain.CatalogSource) (*mcp.Server, error)
	maxBodySize    int64
	requestTimeout time.Duration
	maxConnections int
	limiter        *ratelimiter.KeyedLimiter
	metricsPath    string
	metrics        *transportMetrics
	tracer         trace.Tracer
	httpServer     *http.Server
	now            func() time.Time
}

// NewHTTPTransport creates a new HTTP transport that will serve the catalog
// held by store. It defaults to localhost-only binding.
func NewHTTPTransport(addr string, store *catalog.Store) *HTTPTransport {
	if addr == "" {
		addr = "localhost:3000"
	}
	if store == nil {
		store = catalog.NewStore(nil)
	}
	return &HTTPTransport{
		addr:           addr,
		store:          store,
		newServer:      newMCPServer,
		maxBodySize:    DefaultMaxBodySize,
		requestTimeout: timeouts.Request,
		metrics:        newTransportMetrics(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
	}
}

func (t *HTTPTransport) applyConfig(cfg Config) {
	if t == nil {
		return
	}
	if strings.TrimSpace(cfg.HTTPAddr) != "" {
		t.addr = cfg.HTTPAddr
	}
	if cfg.MaxBodySize > 0 {
		t.maxBodySize = cfg.MaxBodySize
	}
	if cfg.RequestTimeout > 0 {
		t.requestTimeout = cfg.RequestTimeout
	}
	t.maxConnections = cfg.MaxConnections
	t.limiter = ratelimiter.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 0)
	t.metricsPath = strings.TrimSpace(cfg.MetricsPath)
	if t.metricsPath != "" && !strings.HasPrefix(t.metricsPath, "/") {
		t.metricsPath = "/" + t.metricsPath
	}
}

// Handler returns the request router. Anything other than POST /mcp and the
// auxiliary GET endpoints is answered with a JSON 404.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+mcpPath, t.handleMessages)
	mux.HandleFunc("GET "+healthPath, t.handleHealth)
	if t.metricsPath != "" && t.metricsPath != mcpPath && t.metricsPath != healthPath {
		mux.Handle("GET "+t.metricsPath, t.metrics.handler())
	}
	mux.HandleFunc("/", t.handleNotFound)
	return mux
}

// Start starts the HTTP server and blocks until ctx ends or the server fails.
// In-flight requests get timeouts.Shutdown to finish after cancellation.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
		IdleTimeout:       timeouts.Idle,
	}

	errChan := make(chan error, 1)
	go func() {
		listener, err := listenTCP("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if t.maxConnections > 0 {
			listener = netutil.LimitListener(listener, t.maxConnections)
		}
		log.Printf("MCP HTTP server listening on %s", listener.Addr())

		if err := t.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
