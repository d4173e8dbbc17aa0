package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcptools.NewMCPServer(mcptools.NewReviewService(a.svc))
	return mcptools.RunStdio(ctx, server)
}
