package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/shopspring/decimal"
)

func orDash(n decimal.NullDecimal, format func(decimal.Decimal) string) string {
	if !n.Valid {
		return "-"
	}
	return format(n.Decimal)
}

func dashIfNull(n models.NullDecimal) string {
	if !n.Valid {
		return "-"
	}
	return n.String()
}

// writeSummaries prints one block per account with its positions.
func writeSummaries(w io.Writer, summaries []models.AccountSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "no accounts")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, s := range summaries {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		owner := "(unknown user)"
		if s.UserFullName != nil {
			owner = *s.UserFullName
		}
		rate := orDash(s.CommissionRate.NullDecimal, func(d decimal.Decimal) string {
			return d.Shift(2).String() + "%"
		})
		fmt.Fprintf(tw, "%s\t%s\tcommission %s\n", s.AccountNumber, owner, rate)
		fmt.Fprintf(tw, "  deposits\t%s\n", s.TotalDeposits.StringFixed(2))
		fmt.Fprintf(tw, "  withdrawals\t%s\n", s.TotalWithdrawals.StringFixed(2))
		fmt.Fprintf(tw, "  fees\t%s\n", s.TotalFees.StringFixed(2))
		fmt.Fprintf(tw, "  net invested\t%s\n", s.NetInvested.StringFixed(2))

		if len(s.Positions) == 0 {
			continue
		}
		fmt.Fprintln(tw, "  FUND\tSHARES\tPRICE\tVALUE")
		for _, p := range s.Positions {
			money := func(d decimal.Decimal) string { return models.FormatMoney(d, p.Currency) }
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				p.FundName, p.TotalShares.String(), orDash(p.LatestShareValue.NullDecimal, money), orDash(p.MarketValue, money))
		}
	}
	return tw.Flush()
}

// writePerformance prints each fund's series, oldest first.
func writePerformance(w io.Writer, perfs []models.FundPerformance) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, p := range perfs {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		money := func(d decimal.Decimal) string { return models.FormatMoney(d, p.Currency) }
		fmt.Fprintf(tw, "%s\t#%d\tlatest %s\n", p.FundName, p.FundID, orDash(p.LatestShareValue.NullDecimal, money))
		if len(p.Navs) == 0 {
			fmt.Fprintln(tw, "  no NAVs")
			continue
		}
		fmt.Fprintln(tw, "  DATE\tSHARE VALUE\tCHANGE\tSINCE ORIGIN")
		for _, n := range p.Navs {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", n.AsOfDate, money(n.ShareValue.Decimal),
				dashIfNull(n.DeltaPrevious), dashIfNull(n.DeltaSinceOrigin))
		}
	}
	return tw.Flush()
}
