package main

import (
	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fundboard",
	Short: "Financial accounts dashboard backend",
	Long: `Fundboard tracks users' investment accounts, their cash and fund share
movements, and fund NAV history.

Commands:
  serve        - Run the REST API
  migrate      - Create or upgrade the ledger schema
  summary      - Print account summaries
  performance  - Print fund NAV history
  import       - Load a YAML ledger file
  token        - Mint a bearer token for local use`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $FUNDBOARD_CONFIG or fundboard.toml)")
}

// openApp builds the application from the --config flag.
func openApp(cmd *cobra.Command) (*app.App, error) {
	return app.NewApp(cmd.Context(), configPath)
}
