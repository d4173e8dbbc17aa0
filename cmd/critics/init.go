package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter config, persona file and .mcp.json entry",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	out := cmd.OutOrStdout()
	if err := scaffold.Install(dir, force, out); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nSetup complete. Run 'critics review <file>' or register 'critics mcp' with your MCP client.")
	return nil
}
