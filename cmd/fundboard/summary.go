package main

import (
	"encoding/json"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/spf13/cobra"
)

var (
	summaryUser string
	summaryJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print account summaries",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&summaryUser, "user", "u", "", "only accounts of this user id")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	filter := models.AllAccounts
	if summaryUser != "" {
		filter = models.ForUser(summaryUser)
	}
	summaries, err := a.SummaryService.GetAccountSummaries(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if summaryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	return writeSummaries(cmd.OutOrStdout(), summaries)
}
