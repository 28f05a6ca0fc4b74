package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	catalogctl "github.com/louisbranch/plugin-catalog/internal/cmd/catalogctl"
	entrypoint "github.com/louisbranch/plugin-catalog/internal/platform/cmd"
	"github.com/louisbranch/plugin-catalog/internal/platform/config"
)

var version = "dev" // set with -ldflags at build time

// main runs the offline catalog CLI.
func main() {
	cfg, err := catalogctl.ParseConfig(nil)
	if err != nil {
		config.Exitf("catalogctl: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := catalogctl.NewRootCommand(cfg)
	root.Version = version

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCatalogCtl, func(ctx context.Context) error {
		return root.ExecuteContext(ctx)
	})
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, catalogctl.FormatError(os.Stderr, err))
		os.Exit(1)
	}
}
