package summary

import (
	"sort"

	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/shopspring/decimal"
)

type positionKey struct {
	accountID int64
	fundID    int64
}

// AggregatePositions nets share movements per (account, fund). Subscriptions
// add, redemptions subtract, any other type contributes nothing. Pairs that
// net to exactly zero are dropped; negative nets are kept as-is. Each
// account's positions are ordered by fund name, then fund id.
func AggregatePositions(rows []models.ShareRow, funds map[int64]*models.Fund) map[int64][]models.FundPosition {
	net := make(map[positionKey]decimal.Decimal)
	for _, r := range rows {
		k := positionKey{accountID: r.AccountID, fundID: r.FundID}
		switch r.Type {
		case models.ShareSubscription:
			net[k] = net[k].Add(r.SharesChange)
		case models.ShareRedemption:
			net[k] = net[k].Sub(r.SharesChange)
		}
	}

	out := make(map[int64][]models.FundPosition)
	for k, shares := range net {
		if shares.IsZero() {
			continue
		}
		p := models.FundPosition{FundID: k.fundID, TotalShares: shares}
		if f, ok := funds[k.fundID]; ok {
			p.FundName = f.Name
			p.Currency = f.Currency
		}
		out[k.accountID] = append(out[k.accountID], p)
	}

	for _, positions := range out {
		sort.Slice(positions, func(i, j int) bool {
			if positions[i].FundName != positions[j].FundName {
				return positions[i].FundName < positions[j].FundName
			}
			return positions[i].FundID < positions[j].FundID
		})
	}
	return out
}

// ApplyNavs attaches the latest share value and market value to each
// position in place. Positions of funds without a NAV keep null values.
func ApplyNavs(positions []models.FundPosition, navs map[int64]*models.FundNav) {
	for i := range positions {
		nav, ok := navs[positions[i].FundID]
		if !ok || nav == nil {
			positions[i].LatestShareValue = models.NullDecimal{}
			positions[i].MarketValue = decimal.NullDecimal{}
			continue
		}
		positions[i].LatestShareValue = models.NewNullDecimal(nav.ShareValue.Decimal)
		positions[i].MarketValue = decimal.NewNullDecimal(positions[i].TotalShares.Mul(nav.ShareValue.Decimal))
	}
}
