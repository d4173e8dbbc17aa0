package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the store, data directory and API credentials",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "print the report as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	report := status.Run(ctx, a.checks()...)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		newPrinter(cmd.OutOrStdout()).Report(report)
	}

	if report.Status == status.Unhealthy {
		return errors.New("unhealthy")
	}
	return nil
}
