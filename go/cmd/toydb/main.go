// Command toydb runs the toy database as an MCP server with an optional REST API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/config"
	"github.com/example/toydb/go/pkg/logging"
	"github.com/example/toydb/go/pkg/mcpserver"
	"github.com/example/toydb/go/pkg/store"
	"github.com/example/toydb/go/pkg/toydb"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "toydb",
	Short: "Toy users/products/orders database exposed over MCP",
	Long: `toydb keeps a small in-memory database of users, products and orders
and exposes it to MCP clients as tools, resources and prompts.

Configuration is read from --config (YAML or TOML) and TOYDB_* environment
variables. Logs go to stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path relative to export.root")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(serveCmd, toolsCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a service over the configured seed.
func newService() (*toydb.Service, error) {
	seed, err := config.LoadSeed(cfg.Data)
	if err != nil {
		return nil, err
	}
	return toydb.New(store.New(seed), toydb.WithLogger(logger.Named("toydb"))), nil
}

func newMCPServer(svc *toydb.Service) *mcpserver.Server {
	return mcpserver.New(svc, cfg.Server.Name, cfg.Server.Version, logger.Named("mcp"))
}
