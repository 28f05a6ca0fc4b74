package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpcmd "github.com/louisbranch/plugin-catalog/internal/cmd/mcp"
	"github.com/louisbranch/plugin-catalog/internal/platform/config"
)

// main serves the plugin catalog over stdio, or over HTTP when PORT is set.
func main() {
	log.SetPrefix("[MCP] ")

	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:], nil)
	if err != nil {
		config.Exitf("[MCP] %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}
