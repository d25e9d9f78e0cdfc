// Package summary derives account summaries from the ledger: positions,
// latest NAVs, cash totals and the commission on unrealized gains.
package summary

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
)

// Compile-time interface check
var _ interfaces.SummaryService = (*Service)(nil)

// Service implements SummaryService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new summary service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ledgerSnapshot is everything one summary computation reads from the ledger.
type ledgerSnapshot struct {
	accounts []*models.Account
	funds    map[int64]*models.Fund
	cash     []models.CashRow
	shares   []models.ShareRow
	navs     []*models.FundNav
}

// GetAccountSummaries values every account matched by filter. All ledger
// reads happen inside one snapshot so cash, shares and NAVs agree.
func (s *Service) GetAccountSummaries(ctx context.Context, filter models.AccountFilter) ([]models.AccountSummary, error) {
	var snap ledgerSnapshot
	err := s.storage.LedgerStore().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		var err error
		if snap.accounts, err = r.ListAccounts(ctx, filter); err != nil {
			return err
		}
		funds, err := r.ListFunds(ctx)
		if err != nil {
			return err
		}
		snap.funds = make(map[int64]*models.Fund, len(funds))
		for _, f := range funds {
			snap.funds[f.ID] = f
		}
		if snap.cash, err = r.CashRows(ctx, filter); err != nil {
			return err
		}
		if snap.shares, err = r.ShareRows(ctx, filter); err != nil {
			return err
		}
		snap.navs, err = r.LatestNavCandidates(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	users, err := s.lookupUsers(ctx, snap.accounts)
	if err != nil {
		return nil, err
	}

	totals := SumCash(snap.cash)
	positions := AggregatePositions(snap.shares, snap.funds)
	navs := ResolveLatestNavs(snap.navs)

	summaries := make([]models.AccountSummary, 0, len(snap.accounts))
	for _, a := range snap.accounts {
		held := positions[a.ID]
		if held == nil {
			held = []models.FundPosition{}
		}
		ApplyNavs(held, navs)

		t := totals[a.ID]
		v := Value(t, a.CommissionRate.NullDecimal, held)

		sum := models.AccountSummary{
			AccountID:        a.ID,
			AccountNumber:    a.AccountNumber,
			UserID:           a.UserID,
			CommissionRate:   reportedRate(a.CommissionRate),
			TotalDeposits:    t.Deposits,
			TotalWithdrawals: t.Withdrawals,
			TotalFees:        v.TotalFees,
			NetInvested:      v.NetInvested,
			Positions:        held,
		}
		if u, ok := users[a.UserID]; ok {
			name, email := u.FullName, u.Email
			sum.UserFullName = &name
			sum.UserEmail = &email
		}
		summaries = append(summaries, sum)
	}

	sortSummaries(summaries)

	s.logger.Debug().
		Str("user_id", filter.UserID).
		Int("accounts", len(summaries)).
		Int("funds_priced", len(navs)).
		Msg("Account summaries computed")

	return summaries, nil
}

// lookupUsers fetches the owner of every account once. Owners missing from
// the identity store are left out; their summaries carry null profile fields.
func (s *Service) lookupUsers(ctx context.Context, accounts []*models.Account) (map[string]*models.User, error) {
	users := make(map[string]*models.User)
	seen := make(map[string]bool)
	store := s.storage.InternalStore()
	for _, a := range accounts {
		if seen[a.UserID] {
			continue
		}
		seen[a.UserID] = true

		u, err := store.GetUser(ctx, a.UserID)
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn().Str("user_id", a.UserID).Int64("account_id", a.ID).Msg("Account owner not found")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get account owner %s: %w", a.UserID, err)
		}
		users[a.UserID] = u
	}
	return users, nil
}

// sortSummaries orders by owner full name (unknown owners last), then
// account number, then account id.
func sortSummaries(summaries []models.AccountSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch {
		case a.UserFullName == nil && b.UserFullName != nil:
			return false
		case a.UserFullName != nil && b.UserFullName == nil:
			return true
		case a.UserFullName != nil && *a.UserFullName != *b.UserFullName:
			return *a.UserFullName < *b.UserFullName
		}
		if a.AccountNumber != b.AccountNumber {
			return a.AccountNumber < b.AccountNumber
		}
		return a.AccountID < b.AccountID
	})
}

// reportedRate hides a zero rate: the summary reports it as unset.
func reportedRate(rate models.NullDecimal) models.NullDecimal {
	if !rate.Valid || rate.Decimal.IsZero() {
		return models.NullDecimal{}
	}
	return rate
}
