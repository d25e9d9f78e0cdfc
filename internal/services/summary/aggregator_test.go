package summary

import (
	"testing"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ld builds a ledger decimal as it comes back from storage.
func ld(s string) models.Decimal { return models.RequireDecimal(s) }

func TestAggregatePositions(t *testing.T) {
	funds := map[int64]*models.Fund{
		1: {ID: 1, Name: "Growth", Currency: "USD"},
		2: {ID: 2, Name: "Balanced", Currency: "EUR"},
		3: {ID: 3, Name: "Balanced", Currency: "EUR"},
	}

	rows := []models.ShareRow{
		{AccountID: 10, FundID: 1, Type: models.ShareSubscription, SharesChange: d("10.5")},
		{AccountID: 10, FundID: 1, Type: models.ShareRedemption, SharesChange: d("0.5")},
		{AccountID: 10, FundID: 3, Type: models.ShareSubscription, SharesChange: d("1")},
		{AccountID: 10, FundID: 2, Type: models.ShareSubscription, SharesChange: d("2")},
		// nets to zero
		{AccountID: 11, FundID: 1, Type: models.ShareSubscription, SharesChange: d("5")},
		{AccountID: 11, FundID: 1, Type: models.ShareRedemption, SharesChange: d("5.000")},
		// redemption past holdings is reported as-is
		{AccountID: 12, FundID: 2, Type: models.ShareRedemption, SharesChange: d("3")},
		// unknown type contributes nothing
		{AccountID: 12, FundID: 1, Type: "transfer", SharesChange: d("100")},
	}

	got := AggregatePositions(rows, funds)

	require.Len(t, got[10], 3)
	assert.Equal(t, int64(2), got[10][0].FundID, "Balanced/2 sorts before Balanced/3")
	assert.Equal(t, int64(3), got[10][1].FundID)
	assert.Equal(t, int64(1), got[10][2].FundID)
	assert.True(t, got[10][2].TotalShares.Equal(d("10")))
	assert.Equal(t, "USD", got[10][2].Currency)

	assert.Empty(t, got[11], "net-zero position must be dropped")

	require.Len(t, got[12], 1)
	assert.True(t, got[12][0].TotalShares.Equal(d("-3")))
}

func TestAggregatePositions_Empty(t *testing.T) {
	got := AggregatePositions(nil, nil)
	assert.Empty(t, got)
}

func TestApplyNavs(t *testing.T) {
	positions := []models.FundPosition{
		{FundID: 1, TotalShares: d("10")},
		{FundID: 2, TotalShares: d("3")},
	}
	navs := map[int64]*models.FundNav{
		1: {FundID: 1, ShareValue: ld("12.34")},
	}

	ApplyNavs(positions, navs)

	require.True(t, positions[0].LatestShareValue.Valid)
	assert.Equal(t, "12.34", positions[0].LatestShareValue.String())
	assert.Equal(t, "123.4", positions[0].MarketValue.Decimal.String())

	assert.False(t, positions[1].LatestShareValue.Valid)
	assert.False(t, positions[1].MarketValue.Valid)
}
