package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/critics/internal/config"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the reviewer personas",
	Args:  cobra.NoArgs,
	RunE:  runPersonas,
}

func init() {
	personasCmd.Flags().Bool("json", false, "print personas as JSON")
	rootCmd.AddCommand(personasCmd)
}

func runPersonas(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg.PersonasFile)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(catalog.List())
	}
	newPrinter(cmd.OutOrStdout()).Personas(catalog.List())
	return nil
}
