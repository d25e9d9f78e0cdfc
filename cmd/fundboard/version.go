package main

import (
	"fmt"

	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		// Config only locates the .version file; ldflags values print without it.
		_, _ = app.LoadConfig(configPath)
		fmt.Fprintf(cmd.OutOrStdout(), "fundboard %s\n", common.CurrentBuild())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
