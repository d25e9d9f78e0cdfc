package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/spf13/cobra"
)

var (
	perfFund  int64
	perfLimit int
	perfJSON  bool
	perfChart string
)

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Print fund NAV history",
	Long: `Print the most recent NAVs of one fund (--fund) or of every fund.

Examples:
  fundboard performance --limit 6
  fundboard performance --fund 3 --chart growth.png`,
	Args: cobra.NoArgs,
	RunE: runPerformance,
}

func init() {
	rootCmd.AddCommand(performanceCmd)
	performanceCmd.Flags().Int64VarP(&perfFund, "fund", "f", 0, "fund id")
	performanceCmd.Flags().IntVarP(&perfLimit, "limit", "n", 0, "NAVs per fund (default from config)")
	performanceCmd.Flags().BoolVar(&perfJSON, "json", false, "print JSON")
	performanceCmd.Flags().StringVar(&perfChart, "chart", "", "write a PNG chart of --fund to this path")
}

func runPerformance(cmd *cobra.Command, args []string) error {
	if perfChart != "" && perfFund == 0 {
		return fmt.Errorf("--chart requires --fund")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if perfChart != "" {
		png, err := a.PerformanceService.RenderChart(ctx, perfFund, perfLimit)
		if err != nil {
			return err
		}
		if err := os.WriteFile(perfChart, png, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "chart written: %s\n", perfChart)
		return nil
	}

	var perfs []models.FundPerformance
	if perfFund != 0 {
		p, err := a.PerformanceService.GetFundPerformance(ctx, perfFund, perfLimit)
		if err != nil {
			return err
		}
		perfs = []models.FundPerformance{*p}
	} else {
		perfs, err = a.PerformanceService.ListFundPerformance(ctx, perfLimit)
		if err != nil {
			return err
		}
	}

	if perfJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(perfs)
	}
	return writePerformance(cmd.OutOrStdout(), perfs)
}
