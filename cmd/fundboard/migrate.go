package main

import (
	"fmt"

	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/storage"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the ledger schema",
	Long: `Open the SQLite ledger and apply the schema. The identity store is not
touched, so this runs without SurrealDB.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := common.NewLoggerFromConfig(cfg.Logging)

	ledger, err := storage.OpenLedger(cmd.Context(), logger, cfg.Storage.Ledger)
	if err != nil {
		return err
	}
	defer ledger.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "ledger migrated: %s\n", cfg.Storage.Ledger.Path)
	return nil
}
