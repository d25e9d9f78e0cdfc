package summary

import (
	"testing"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func market(v string) []models.FundPosition {
	return []models.FundPosition{{FundID: 1, TotalShares: d("1"), MarketValue: decimal.NewNullDecimal(d(v))}}
}

func TestValue(t *testing.T) {
	deposits := models.CashTotals{Deposits: d("1000")}

	tests := []struct {
		name            string
		totals          models.CashTotals
		rate            decimal.NullDecimal
		positions       []models.FundPosition
		wantFees        string
		wantNetInvested string
	}{
		{
			name:            "no movements",
			wantFees:        "0",
			wantNetInvested: "0",
		},
		{
			name:            "loss charges no commission",
			totals:          deposits,
			rate:            decimal.NewNullDecimal(d("0.5")),
			positions:       market("900"),
			wantFees:        "0",
			wantNetInvested: "1000",
		},
		{
			name:            "gain at 20%",
			totals:          deposits,
			rate:            decimal.NewNullDecimal(d("0.20")),
			positions:       market("1200"),
			wantFees:        "40",
			wantNetInvested: "960",
		},
		{
			name:            "unset rate charges nothing",
			totals:          deposits,
			positions:       market("1200"),
			wantFees:        "0",
			wantNetInvested: "1000",
		},
		{
			name:            "break-even charges nothing",
			totals:          deposits,
			rate:            decimal.NewNullDecimal(d("0.2")),
			positions:       market("1000"),
			wantFees:        "0",
			wantNetInvested: "1000",
		},
		{
			name:   "explicit fees and withdrawals",
			totals: models.CashTotals{Deposits: d("1000"), Withdrawals: d("100"), Fees: d("10")},
			rate:   decimal.NewNullDecimal(d("0.1")),
			// before commission 890, gains 110, commission 11
			positions:       market("1000"),
			wantFees:        "21",
			wantNetInvested: "879",
		},
		{
			name:   "unpriced positions are skipped",
			totals: deposits,
			rate:   decimal.NewNullDecimal(d("0.2")),
			positions: []models.FundPosition{
				{FundID: 1, TotalShares: d("5")},
				{FundID: 2, TotalShares: d("1"), MarketValue: decimal.NewNullDecimal(d("1100"))},
			},
			wantFees:        "20",
			wantNetInvested: "980",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(tt.totals, tt.rate, tt.positions)
			assert.True(t, v.TotalFees.Equal(d(tt.wantFees)), "total fees = %s", v.TotalFees)
			assert.True(t, v.NetInvested.Equal(d(tt.wantNetInvested)), "net invested = %s", v.NetInvested)
		})
	}
}

func TestValue_ExactDecimal(t *testing.T) {
	v := Value(models.CashTotals{Deposits: d("0.1")}, decimal.NewNullDecimal(d("0.3")),
		market("0.3"))
	// gains 0.2 × 0.3 = 0.06 exactly
	assert.Equal(t, "0.06", v.Commission.String())
}

func TestSumCash(t *testing.T) {
	got := SumCash([]models.CashRow{
		{AccountID: 1, Type: models.CashDeposit, Amount: d("100.10")},
		{AccountID: 1, Type: models.CashDeposit, Amount: d("0.20")},
		{AccountID: 1, Type: models.CashWithdrawal, Amount: d("50")},
		{AccountID: 1, Type: models.CashFee, Amount: d("1.5")},
		{AccountID: 2, Type: "bonus", Amount: d("999")},
	})

	assert.Equal(t, "100.3", got[1].Deposits.String())
	assert.Equal(t, "50", got[1].Withdrawals.String())
	assert.Equal(t, "1.5", got[1].Fees.String())
	assert.True(t, got[2].Deposits.IsZero())
}
