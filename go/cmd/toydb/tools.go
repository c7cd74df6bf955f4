package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/toydb/go/pkg/mcpserver"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the MCP tools grouped by area",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	catalogue := newMCPServer(svc).Catalogue()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, area := range mcpserver.Areas {
		fmt.Fprintf(tw, "%s:\n", area)
		for _, e := range catalogue {
			if e.Area == area {
				fmt.Fprintf(tw, "  %s\t%s\n", e.Name, e.Description)
			}
		}
	}
	return tw.Flush()
}
