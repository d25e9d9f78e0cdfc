package summary

import (
	"github.com/bobmcallan/fundboard/internal/models"
)

// ResolveLatestNavs picks one NAV per fund: the newest as_of_date, then the
// newest created_at, then the highest id. Funds without observations are
// absent from the result.
func ResolveLatestNavs(candidates []*models.FundNav) map[int64]*models.FundNav {
	latest := make(map[int64]*models.FundNav, len(candidates))
	for _, n := range candidates {
		if n == nil {
			continue
		}
		cur, ok := latest[n.FundID]
		if !ok || newerNav(n, cur) {
			latest[n.FundID] = n
		}
	}
	return latest
}

func newerNav(a, b *models.FundNav) bool {
	if c := a.AsOfDate.Compare(b.AsOfDate); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
