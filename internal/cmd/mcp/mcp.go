// Package mcp parses MCP command configuration and serves the plugin catalog
// over stdio or HTTP.
package mcp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	entrypoint "github.com/louisbranch/plugin-catalog/internal/platform/cmd"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/loader"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	// Port selects the transport: empty serves stdio, anything else must be
	// a non-negative integer HTTP port.
	Port           string        `env:"PORT"`
	Host           string        `env:"PLUGIN_CATALOG_HOST"            envDefault:"localhost"`
	MaxBodySize    int64         `env:"MAX_BODY_SIZE"                  envDefault:"10485760"`
	PluginsDir     string        `env:"PLUGIN_CATALOG_PLUGINS_DIR"     envDefault:"plugins"`
	RequestTimeout time.Duration `env:"PLUGIN_CATALOG_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxConnections int           `env:"PLUGIN_CATALOG_MAX_CONNECTIONS" envDefault:"0"`
	RateLimitRPS   float64       `env:"PLUGIN_CATALOG_RATE_LIMIT_RPS"  envDefault:"0"`
	RateLimitBurst int           `env:"PLUGIN_CATALOG_RATE_LIMIT_BURST" envDefault:"0"`
	MetricsPath    string        `env:"PLUGIN_CATALOG_METRICS_PATH"`
}

// ParseConfig parses environment and flags into a Config. A nil environ reads
// the process environment.
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, environ); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port; empty serves MCP over stdio")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "HTTP bind host")
	fs.Int64Var(&cfg.MaxBodySize, "max-body-size", cfg.MaxBodySize, "Maximum HTTP request body size in bytes")
	fs.StringVar(&cfg.PluginsDir, "plugins-dir", cfg.PluginsDir, "Directory holding one subdirectory per plugin")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Deadline for reading and dispatching one HTTP request")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, _, err := parsePort(c.Port); err != nil {
		return err
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("invalid MAX_BODY_SIZE %d: must be a positive number of bytes", c.MaxBodySize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s: must be positive", c.RequestTimeout)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max connections %d: must not be negative", c.MaxConnections)
	}
	return nil
}

// parsePort reports whether raw selects HTTP and, if so, on which port.
func parsePort(raw string) (int, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 || port > 65535 {
		return 0, false, fmt.Errorf("invalid PORT %q: must be an integer between 0 and 65535", raw)
	}
	return port, true, nil
}

// serviceConfig maps command configuration onto the service runtime.
func (c Config) serviceConfig() service.Config {
	port, useHTTP, _ := parsePort(c.Port)
	if !useHTTP {
		return service.Config{Transport: service.TransportStdio}
	}
	return service.Config{
		Transport:      service.TransportHTTP,
		HTTPAddr:       net.JoinHostPort(c.Host, strconv.Itoa(port)),
		MaxBodySize:    c.MaxBodySize,
		RequestTimeout: c.RequestTimeout,
		MaxConnections: c.MaxConnections,
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
		MetricsPath:    c.MetricsPath,
	}
}

// Run loads the catalog and serves it until ctx is cancelled or the stdio
// peer disconnects. SIGHUP reloads the catalog from disk.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		l := loader.New(cfg.PluginsDir, loader.WithLogf(log.Printf))
		cat, err := l.LoadCatalog(ctx)
		if err != nil {
			return fmt.Errorf("load plugins: %w", err)
		}
		log.Printf("Loaded %d plugins from %s", cat.Len(), l.Root())
		store := catalog.NewStore(cat)

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		hangups := make(chan os.Signal, 1)
		signal.Notify(hangups, syscall.SIGHUP)
		defer signal.Stop(hangups)
		go watchReload(ctx, l, store, hangups)

		return service.Run(ctx, cfg.serviceConfig(), store)
	})
}

// watchReload reloads the catalog each time signals fires until ctx ends. A
// failed reload keeps the catalog already being served.
func watchReload(ctx context.Context, l *loader.Loader, store *catalog.Store, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			if err := reloadCatalog(ctx, l, store); err != nil {
				log.Printf("Reload failed, keeping previous catalog: %v", err)
			}
		}
	}
}

func reloadCatalog(ctx context.Context, l *loader.Loader, store *catalog.Store) error {
	if l == nil || store == nil {
		return errors.New("loader and store are required")
	}
	next, err := l.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	previous := store.Replace(next)
	log.Printf("Reloaded %d plugins (was %d)", next.Len(), previous.Len())
	return nil
}
