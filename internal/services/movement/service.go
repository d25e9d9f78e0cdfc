// Package movement validates and records ledger facts: cash movements, fund
// share movements, NAV observations and funds.
package movement

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
)

// Compile-time interface check
var _ interfaces.MovementService = (*Service)(nil)

// Service implements MovementService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

// NewService creates a new movement service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

func (s *Service) ledger() interfaces.LedgerStore {
	return s.storage.LedgerStore()
}

// --- funds ---

func (s *Service) ListFunds(ctx context.Context) ([]*models.Fund, error) {
	funds, err := s.ledger().ListFunds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}

func (s *Service) CreateFund(ctx context.Context, in *models.FundCreate) (*models.Fund, error) {
	if in.Name == "" {
		return nil, common.Invalidf("fund name is required")
	}
	c, err := currency(in.Currency)
	if err != nil {
		return nil, err
	}
	in.Currency = c

	fund, err := s.ledger().CreateFund(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create fund: %w", err)
	}
	s.logger.Info().Int64("fund_id", fund.ID).Str("name", fund.Name).Msg("Fund created")
	return fund, nil
}

// --- share movements ---

func (s *Service) CreateShareMovement(ctx context.Context, in *models.FundShareMovementCreate) (*models.FundShareMovement, error) {
	if err := validateShareCreate(in); err != nil {
		return nil, err
	}

	var created *models.FundShareMovement
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		if _, err := w.GetAccount(ctx, in.AccountID); err != nil {
			return err
		}
		if _, err := w.GetFund(ctx, in.FundID); err != nil {
			return err
		}
		if in.CashMovementID != nil {
			cm, err := w.GetCashMovement(ctx, *in.CashMovementID)
			if err != nil {
				return err
			}
			if cm.AccountID != in.AccountID {
				return common.Invalidf("cash movement %d belongs to account %d, not %d", cm.ID, cm.AccountID, in.AccountID)
			}
		}
		var err error
		created, err = w.CreateShareMovement(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fund share movement: %w", err)
	}

	s.logger.Info().
		Int64("id", created.ID).
		Int64("account_id", created.AccountID).
		Int64("fund_id", created.FundID).
		Str("type", string(created.Type)).
		Str("shares", created.SharesChange.String()).
		Msg("Fund share movement created")
	return created, nil
}

func (s *Service) GetShareMovement(ctx context.Context, id int64) (*models.FundShareMovement, error) {
	m, err := s.ledger().GetShareMovement(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund share movement: %w", err)
	}
	return m, nil
}

func (s *Service) UpdateShareMovement(ctx context.Context, id int64, upd *models.FundShareMovementUpdate) (*models.FundShareMovement, error) {
	if err := validateShareUpdate(upd); err != nil {
		return nil, err
	}

	var updated *models.FundShareMovement
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		if upd.FundID != nil {
			if _, err := w.GetFund(ctx, *upd.FundID); err != nil {
				return err
			}
		}
		if err := w.UpdateShareMovement(ctx, id, upd); err != nil {
			return err
		}
		var err error
		updated, err = w.GetShareMovement(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update fund share movement: %w", err)
	}
	s.logger.Info().Int64("id", id).Msg("Fund share movement updated")
	return updated, nil
}

func (s *Service) DeleteShareMovement(ctx context.Context, id int64) error {
	if err := s.ledger().DeleteShareMovement(ctx, id); err != nil {
		return fmt.Errorf("failed to delete fund share movement: %w", err)
	}
	s.logger.Info().Int64("id", id).Msg("Fund share movement deleted")
	return nil
}

// --- NAVs ---

func (s *Service) CreateNav(ctx context.Context, in *models.FundNavCreate) (*models.FundNav, error) {
	if err := validateNavCreate(in); err != nil {
		return nil, err
	}

	var created *models.FundNav
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		if _, err := w.GetFund(ctx, in.FundID); err != nil {
			return err
		}
		var err error
		created, err = w.CreateNav(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create nav: %w", err)
	}

	s.logger.Info().
		Int64("fund_id", created.FundID).
		Str("as_of", created.AsOfDate.String()).
		Str("share_value", created.ShareValue.String()).
		Msg("NAV recorded")
	return created, nil
}

func (s *Service) GetNav(ctx context.Context, id int64) (*models.FundNav, error) {
	n, err := s.ledger().GetNav(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get nav: %w", err)
	}
	return n, nil
}

// ListNavs returns NAVs newest first. fundID 0 lists every fund; a non-zero
// fundID must exist.
func (s *Service) ListNavs(ctx context.Context, fundID int64) ([]*models.FundNav, error) {
	var navs []*models.FundNav
	err := s.ledger().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		if fundID != 0 {
			if _, err := r.GetFund(ctx, fundID); err != nil {
				return err
			}
		}
		var err error
		navs, err = r.ListNavs(ctx, fundID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list navs: %w", err)
	}
	return navs, nil
}

func (s *Service) UpdateNav(ctx context.Context, id int64, upd *models.FundNavUpdate) (*models.FundNav, error) {
	if err := validateNavUpdate(upd); err != nil {
		return nil, err
	}

	var updated *models.FundNav
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		if err := w.UpdateNav(ctx, id, upd); err != nil {
			return err
		}
		var err error
		updated, err = w.GetNav(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update nav: %w", err)
	}
	s.logger.Info().Int64("id", id).Msg("NAV updated")
	return updated, nil
}

func (s *Service) DeleteNav(ctx context.Context, id int64) error {
	if err := s.ledger().DeleteNav(ctx, id); err != nil {
		return fmt.Errorf("failed to delete nav: %w", err)
	}
	s.logger.Info().Int64("id", id).Msg("NAV deleted")
	return nil
}

// --- feeds ---

// UserMovements is the combined feed across all of a user's accounts.
func (s *Service) UserMovements(ctx context.Context, userID string) ([]*models.UserMovement, error) {
	if _, err := s.storage.InternalStore().GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var feed []*models.UserMovement
	err := s.ledger().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		accounts, err := r.ListAccounts(ctx, models.ForUser(userID))
		if err != nil {
			return err
		}
		ids := make([]int64, 0, len(accounts))
		for _, a := range accounts {
			ids = append(ids, a.ID)
		}
		feed, err = r.Movements(ctx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user movements: %w", err)
	}
	return nonNilFeed(feed), nil
}

// AccountMovements is the combined feed of one account.
func (s *Service) AccountMovements(ctx context.Context, accountID int64) ([]*models.UserMovement, error) {
	var feed []*models.UserMovement
	err := s.ledger().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		if _, err := r.GetAccount(ctx, accountID); err != nil {
			return err
		}
		var err error
		feed, err = r.Movements(ctx, []int64{accountID})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account movements: %w", err)
	}
	return nonNilFeed(feed), nil
}

func nonNilFeed(feed []*models.UserMovement) []*models.UserMovement {
	if feed == nil {
		return []*models.UserMovement{}
	}
	return feed
}

// CashShareReport pairs every cash movement with the subscription it
// triggered. Owners missing from the identity store get an empty name.
func (s *Service) CashShareReport(ctx context.Context) ([]*models.MovementReportRow, error) {
	rows, err := s.ledger().CashShareReport(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build cash/share report: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	names, err := s.userNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if n, ok := names[r.UserID]; ok {
			r.UserFullName = n
		}
	}
	if rows == nil {
		rows = []*models.MovementReportRow{}
	}
	return rows, nil
}

// userNames resolves full names for the given user ids. Unknown users are
// skipped.
func (s *Service) userNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string)
	seen := make(map[string]bool)
	store := s.storage.InternalStore()
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		u, err := store.GetUser(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user %s: %w", id, err)
		}
		names[id] = u.FullName
	}
	return names, nil
}
