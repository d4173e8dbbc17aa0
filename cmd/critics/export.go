package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <review-id>",
	Short: "Export a review as JSON, a markdown report, or a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", export.FormatJSON, "json, markdown or mermaid")
	exportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := export.ExportReview(ctx, a.svc.Store(), args[0])
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	format, _ := cmd.Flags().GetString("format")
	out, err := export.Render(data, format)
	if err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
