package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load a YAML ledger file",
	Long: `Load users, funds, accounts, NAVs and movements from a YAML file.
A file whose content was already imported is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ImportLedgerFile(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if res.AlreadyApplied {
		fmt.Fprintf(out, "%s already imported\n", args[0])
		return nil
	}
	fmt.Fprintf(out, "imported %s: %d users, %d funds, %d accounts, %d navs, %d cash, %d shares (%d skipped)\n",
		args[0], res.Users, res.Funds, res.Accounts, res.Navs, res.CashMovements, res.ShareMovements, res.Skipped)
	return nil
}
