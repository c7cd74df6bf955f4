package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/toydb/go/pkg/sandbox"
	"github.com/example/toydb/go/pkg/toydb"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [snapshot|stats|sales]",
	Short: "Write a JSON export of the seeded database under export.root",
	Long: `Writes one of the following as indented JSON to --out, resolved
inside export.root:

  snapshot  every user, product and order
  stats     user statistics
  sales     revenue per product category`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"snapshot", "stats", "sales"},
	RunE:      runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	dir, err := sandbox.New(cfg.Export.Root)
	if err != nil {
		return err
	}

	path, err := dir.Resolve(exportOut)
	if err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	data, err := json.MarshalIndent(exportPayload(svc, args[0]), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", args[0], err)
	}
	if err := dir.WriteFile(exportOut, append(data, '\n')); err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}

	logger.Info("export written", zap.String("kind", args[0]), zap.String("path", path))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func exportPayload(svc *toydb.Service, kind string) any {
	switch kind {
	case "stats":
		return svc.UserStatistics()
	case "sales":
		return svc.SalesByCategory()
	default:
		return svc.Snapshot()
	}
}
