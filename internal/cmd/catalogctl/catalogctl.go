// Package catalogctl implements the offline catalog inspection CLI. It loads a
// plugins directory with the same loader and query engine the MCP server uses.
package catalogctl

import (
	"encoding/json"
	"fmt"
	"io"

	entrypoint "github.com/louisbranch/plugin-catalog/internal/platform/cmd"
	apperrors "github.com/louisbranch/plugin-catalog/internal/platform/errors"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/catalog"
	"github.com/louisbranch/plugin-catalog/internal/services/mcp/loader"
	"github.com/spf13/cobra"
)

const defaultCommandsDir = ".claude/commands"

// Config holds catalogctl defaults read from the environment.
type Config struct {
	PluginsDir string `env:"PLUGIN_CATALOG_PLUGINS_DIR" envDefault:"plugins"`
}

// ParseConfig loads Config. A nil environ reads the process environment.
func ParseConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg, environ); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type options struct {
	pluginsDir string
	json       bool
}

// NewRootCommand builds the catalogctl command tree.
func NewRootCommand(cfg Config) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and sync a plugin catalog directory",
		Long: `catalogctl reads a plugins directory the same way the MCP server does.

It can list, fetch and search plugins without running a server, and copy
plugin skills into a Claude commands directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.pluginsDir, "plugins-dir", cfg.PluginsDir, "Directory holding one subdirectory per plugin")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of styled text")

	root.AddCommand(
		newListCommand(opts),
		newGetCommand(opts),
		newSearchCommand(opts),
		newSyncCommandsCommand(opts),
	)
	return root
}

func newListCommand(opts *options) *cobra.Command {
	var tag, componentType string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins, optionally filtered by component type or tag",
		Example: `  catalogctl list
  catalogctl list --type skill --tag git`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filterType, err := parseType(componentType)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			metas := cat.List(catalog.ListFilter{Type: filterType, Tag: tag})
			return writeMetas(cmd.OutOrStdout(), opts, metas)
		},
	}
	cmd.Flags().StringVar(&componentType, "type", "", "Only plugins with this component: skill, agent, prompt")
	cmd.Flags().StringVar(&tag, "tag", "", "Only plugins carrying this tag")
	return cmd
}

func newGetCommand(opts *options) *cobra.Command {
	var component string
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show one plugin or print one of its component bodies",
		Example: `  catalogctl get review
  catalogctl get review --component skill`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			componentType, err := parseType(component)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if componentType != "" {
				content, err := cat.GetComponent(args[0], componentType)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, content)
				return err
			}
			plugin, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(out, plugin)
			}
			renderPlugin(out, plugin)
			return nil
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "Print only this component body: skill, agent, prompt")
	return cmd
}

func newSearchCommand(opts *options) *cobra.Command {
	var componentType string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search plugin names, descriptions and tags",
		Example: `  catalogctl search review
  catalogctl search git --type agent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filterType, err := parseType(componentType)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			return writeMetas(cmd.OutOrStdout(), opts, cat.Search(args[0], filterType))
		},
	}
	cmd.Flags().StringVar(&componentType, "type", "", "Only plugins with this component: skill, agent, prompt")
	return cmd
}

func newSyncCommandsCommand(opts *options) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "sync-commands",
		Short: "Copy each plugin skill to <dest>/<plugin>.md",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			synced, err := SyncCommands(cmd.Context(), opts.pluginsDir, dest)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.json {
				return writeJSON(out, synced)
			}
			renderSynced(out, synced, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dest, "dest", defaultCommandsDir, "Commands directory to write into")
	return cmd
}

func parseType(raw string) (catalog.ComponentType, error) {
	if raw == "" {
		return "", nil
	}
	componentType, err := catalog.ParseComponentType(raw)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err)
	}
	return componentType, nil
}

func loadCatalog(cmd *cobra.Command, opts *options) (*catalog.Catalog, error) {
	stderr := cmd.ErrOrStderr()
	l := loader.New(opts.pluginsDir, loader.WithLogf(func(format string, args ...any) {
		renderWarning(stderr, fmt.Sprintf(format, args...))
	}))
	return l.LoadCatalog(cmd.Context())
}

func writeMetas(w io.Writer, opts *options, metas []catalog.PluginMeta) error {
	if opts.json {
		return writeJSON(w, metas)
	}
	renderMetas(w, metas)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
