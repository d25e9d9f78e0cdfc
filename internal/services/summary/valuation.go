package summary

import (
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/shopspring/decimal"
)

// Valuation holds every intermediate of the commission calculation. Only
// TotalFees and NetInvested are reported on a summary.
type Valuation struct {
	TotalMarketValue            decimal.Decimal
	NetInvestedBeforeCommission decimal.Decimal
	TotalGains                  decimal.Decimal
	Commission                  decimal.Decimal
	TotalFees                   decimal.Decimal
	NetInvested                 decimal.Decimal
}

// SumCash totals cash movements per account by type. Unknown types are
// ignored.
func SumCash(rows []models.CashRow) map[int64]models.CashTotals {
	out := make(map[int64]models.CashTotals)
	for _, r := range rows {
		t := out[r.AccountID]
		switch r.Type {
		case models.CashDeposit:
			t.Deposits = t.Deposits.Add(r.Amount)
		case models.CashWithdrawal:
			t.Withdrawals = t.Withdrawals.Add(r.Amount)
		case models.CashFee:
			t.Fees = t.Fees.Add(r.Amount)
		}
		out[r.AccountID] = t
	}
	return out
}

// Value runs the account valuation. Commission is charged on positive gains
// only; an unset rate charges nothing. Positions without a market value are
// left out of the market total.
func Value(totals models.CashTotals, rate decimal.NullDecimal, positions []models.FundPosition) Valuation {
	var v Valuation

	for _, p := range positions {
		if p.MarketValue.Valid {
			v.TotalMarketValue = v.TotalMarketValue.Add(p.MarketValue.Decimal)
		}
	}

	v.NetInvestedBeforeCommission = totals.Deposits.Sub(totals.Withdrawals).Sub(totals.Fees)
	v.TotalGains = v.TotalMarketValue.Sub(v.NetInvestedBeforeCommission)

	r := decimal.Zero
	if rate.Valid {
		r = rate.Decimal
	}
	if v.TotalGains.IsPositive() {
		v.Commission = v.TotalGains.Mul(r)
	}

	v.TotalFees = totals.Fees.Add(v.Commission)
	v.NetInvested = totals.Deposits.Sub(totals.Withdrawals).Sub(v.TotalFees)
	return v
}
