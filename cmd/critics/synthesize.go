package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <review-id>",
	Short: "Condense a review's comments into prioritized findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSynthesize,
}

func init() {
	synthesizeCmd.Flags().Bool("force", false, "discard stored findings and synthesize again")
	synthesizeCmd.Flags().Bool("json", false, "print findings as JSON")

	rootCmd.AddCommand(synthesizeCmd)
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	force, _ := cmd.Flags().GetBool("force")
	metas, err := a.svc.Synthesize(ctx, args[0], force)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(metas)
	}
	newPrinter(cmd.OutOrStdout()).Findings(metas)
	return nil
}
