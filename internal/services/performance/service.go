// Package performance assembles fund NAV series and renders them.
package performance

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/bobmcallan/fundboard/internal/services/summary"
)

// Compile-time interface check
var _ interfaces.PerformanceService = (*Service)(nil)

// Service implements PerformanceService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	limits  common.PerformanceConfig
}

// NewService creates a new performance service
func NewService(storage interfaces.StorageManager, logger *common.Logger, limits common.PerformanceConfig) *Service {
	if limits.DefaultLimit < 1 {
		limits.DefaultLimit = 12
	}
	if limits.MaxLimit < limits.DefaultLimit {
		limits.MaxLimit = 365
	}
	return &Service{
		storage: storage,
		logger:  logger,
		limits:  limits,
	}
}

// resolveLimit maps 0 to the default and rejects anything outside 1..max.
func (s *Service) resolveLimit(limit int) (int, error) {
	if limit == 0 {
		return s.limits.DefaultLimit, nil
	}
	if limit < 1 || limit > s.limits.MaxLimit {
		return 0, common.Invalidf("limit must be between 1 and %d, got %d", s.limits.MaxLimit, limit)
	}
	return limit, nil
}

// GetFundPerformance returns the most recent limit NAVs of one fund in
// ascending order.
func (s *Service) GetFundPerformance(ctx context.Context, fundID int64, limit int) (*models.FundPerformance, error) {
	n, err := s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	var fund *models.Fund
	var navs []*models.FundNav
	err = s.storage.LedgerStore().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		var err error
		if fund, err = r.GetFund(ctx, fundID); err != nil {
			return err
		}
		navs, err = r.RecentNavs(ctx, fundID, n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get fund performance: %w", err)
	}

	perf := assemble(fund, navs)
	return &perf, nil
}

// ListFundPerformance returns the series of every fund, ordered by fund id.
// Funds without NAVs are included with an empty series.
func (s *Service) ListFundPerformance(ctx context.Context, limit int) ([]models.FundPerformance, error) {
	n, err := s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	var funds []*models.Fund
	var navs []*models.FundNav
	err = s.storage.LedgerStore().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		var err error
		if funds, err = r.ListFunds(ctx); err != nil {
			return err
		}
		navs, err = r.RecentNavs(ctx, 0, n)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fund performance: %w", err)
	}

	byFund := make(map[int64][]*models.FundNav)
	for _, nav := range navs {
		byFund[nav.FundID] = append(byFund[nav.FundID], nav)
	}

	sort.Slice(funds, func(i, j int) bool { return funds[i].ID < funds[j].ID })

	out := make([]models.FundPerformance, 0, len(funds))
	for _, f := range funds {
		out = append(out, assemble(f, byFund[f.ID]))
	}

	s.logger.Debug().Int("funds", len(out)).Int("limit", n).Msg("Fund performance listed")
	return out, nil
}

// GetLatestNavs resolves the latest NAV of every fund that has one.
func (s *Service) GetLatestNavs(ctx context.Context) (map[int64]*models.FundNav, error) {
	var candidates []*models.FundNav
	err := s.storage.LedgerStore().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		var err error
		candidates, err = r.LatestNavCandidates(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest navs: %w", err)
	}
	return summary.ResolveLatestNavs(candidates), nil
}

// assemble turns a newest-first NAV slice into an ascending series.
func assemble(fund *models.Fund, newestFirst []*models.FundNav) models.FundPerformance {
	perf := models.FundPerformance{
		FundID:   fund.ID,
		FundName: fund.Name,
		Currency: fund.Currency,
		Navs:     make([]models.NavPoint, 0, len(newestFirst)),
	}
	for i := len(newestFirst) - 1; i >= 0; i-- {
		perf.Navs = append(perf.Navs, newestFirst[i].Point())
	}
	if len(perf.Navs) > 0 {
		perf.LatestShareValue = models.NewNullDecimal(perf.Navs[len(perf.Navs)-1].ShareValue.Decimal)
	}
	return perf
}
