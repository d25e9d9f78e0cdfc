package movement

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/interfaces"
	"github.com/bobmcallan/fundboard/internal/models"
)

// shareScale is the number of decimal places kept when a deposit is
// converted into fund shares.
const shareScale = 8

// CreateCashMovement records a cash movement. A deposit carrying a fund id
// also subscribes the deposited amount into that fund at the latest NAV on
// or before the effective date; both rows commit together or not at all.
func (s *Service) CreateCashMovement(ctx context.Context, in *models.CashMovementCreate) (*models.CashMovement, error) {
	if err := validateCashCreate(in); err != nil {
		return nil, err
	}

	var created *models.CashMovement
	var account *models.Account
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		var err error
		if account, err = w.GetAccount(ctx, in.AccountID); err != nil {
			return err
		}
		if in.FundID != nil {
			if _, err := w.GetFund(ctx, *in.FundID); err != nil {
				return err
			}
		}

		m, err := w.CreateCashMovement(ctx, in)
		if err != nil {
			return err
		}
		if in.FundID != nil {
			sub, err := subscribe(ctx, w, m, *in.FundID)
			if err != nil {
				return err
			}
			s.logger.Info().
				Int64("cash_movement_id", m.ID).
				Int64("fund_id", sub.FundID).
				Str("shares", sub.SharesChange.String()).
				Str("share_price", sub.SharePrice.String()).
				Msg("Deposit subscribed into fund")
			if m, err = w.GetCashMovement(ctx, m.ID); err != nil {
				return err
			}
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cash movement: %w", err)
	}

	s.attachUserName(ctx, created, account.UserID)

	s.logger.Info().
		Int64("id", created.ID).
		Int64("account_id", created.AccountID).
		Str("type", string(created.Type)).
		Str("amount", created.Amount.String()).
		Str("currency", created.Currency).
		Msg("Cash movement created")
	return created, nil
}

func (s *Service) GetCashMovement(ctx context.Context, id int64) (*models.CashMovement, error) {
	var m *models.CashMovement
	var account *models.Account
	err := s.ledger().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		var err error
		if m, err = r.GetCashMovement(ctx, id); err != nil {
			return err
		}
		account, err = r.GetAccount(ctx, m.AccountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cash movement: %w", err)
	}
	s.attachUserName(ctx, m, account.UserID)
	return m, nil
}

// ListCashMovements returns every cash movement, newest first, with the
// owner's name and the fund of any subscription it triggered.
func (s *Service) ListCashMovements(ctx context.Context) ([]*models.CashMovement, error) {
	var list []*models.CashMovement
	owners := make(map[int64]string)
	err := s.ledger().ReadSnapshot(ctx, func(r interfaces.LedgerReader) error {
		accounts, err := r.ListAccounts(ctx, models.AllAccounts)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			owners[a.ID] = a.UserID
		}
		list, err = r.ListCashMovements(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}

	ids := make([]string, 0, len(owners))
	for _, userID := range owners {
		ids = append(ids, userID)
	}
	names, err := s.userNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		if n, ok := names[owners[m.AccountID]]; ok {
			name := n
			m.UserName = &name
		}
	}
	if list == nil {
		list = []*models.CashMovement{}
	}
	return list, nil
}

// UpdateCashMovement applies the given changes. When FundID is set the
// movement must be a deposit: without a subscription one is created, and
// an existing subscription into another fund is moved and repriced.
func (s *Service) UpdateCashMovement(ctx context.Context, id int64, upd *models.CashMovementUpdate) (*models.CashMovement, error) {
	if err := validateCashUpdate(upd); err != nil {
		return nil, err
	}

	var updated *models.CashMovement
	var account *models.Account
	err := s.ledger().WriteTx(ctx, func(w interfaces.LedgerWriter) error {
		if upd.FundID != nil {
			if _, err := w.GetFund(ctx, *upd.FundID); err != nil {
				return err
			}
		}
		if err := w.UpdateCashMovement(ctx, id, upd); err != nil {
			return err
		}
		m, err := w.GetCashMovement(ctx, id)
		if err != nil {
			return err
		}

		if upd.FundID != nil {
			if m.Type != models.CashDeposit {
				return common.Invalidf("fund_id is only accepted on deposits, movement %d is a %s", id, m.Type)
			}
			linked, err := w.ShareMovementForCash(ctx, id)
			if err != nil {
				return err
			}
			switch {
			case linked == nil:
				if _, err := subscribe(ctx, w, m, *upd.FundID); err != nil {
					return err
				}
			case linked.FundID != *upd.FundID:
				price, shares, err := quote(ctx, w, *upd.FundID, m.Amount, m.EffectiveDate)
				if err != nil {
					return err
				}
				if err := w.UpdateShareMovement(ctx, linked.ID, &models.FundShareMovementUpdate{
					FundID:       upd.FundID,
					SharesChange: &shares,
					SharePrice:   &price,
					TotalAmount:  &m.Amount,
				}); err != nil {
					return err
				}
			}
			if m, err = w.GetCashMovement(ctx, id); err != nil {
				return err
			}
		}

		updated = m
		account, err = w.GetAccount(ctx, m.AccountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update cash movement: %w", err)
	}

	s.attachUserName(ctx, updated, account.UserID)
	s.logger.Info().Int64("id", id).Msg("Cash movement updated")
	return updated, nil
}

// DeleteCashMovement removes a cash movement. A subscription it triggered
// is kept and unlinked.
func (s *Service) DeleteCashMovement(ctx context.Context, id int64) error {
	if err := s.ledger().DeleteCashMovement(ctx, id); err != nil {
		return fmt.Errorf("failed to delete cash movement: %w", err)
	}
	s.logger.Info().Int64("id", id).Msg("Cash movement deleted")
	return nil
}

func (s *Service) attachUserName(ctx context.Context, m *models.CashMovement, userID string) {
	u, err := s.storage.InternalStore().GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to resolve movement owner")
		}
		return
	}
	name := u.FullName
	m.UserName = &name
}

// subscribe creates the subscription triggered by a deposit.
func subscribe(ctx context.Context, w interfaces.LedgerWriter, cash *models.CashMovement, fundID int64) (*models.FundShareMovement, error) {
	price, shares, err := quote(ctx, w, fundID, cash.Amount, cash.EffectiveDate)
	if err != nil {
		return nil, err
	}
	cashID := cash.ID
	return w.CreateShareMovement(ctx, &models.FundShareMovementCreate{
		AccountID:      cash.AccountID,
		FundID:         fundID,
		CashMovementID: &cashID,
		Type:           models.ShareSubscription,
		SharesChange:   shares,
		SharePrice:     price,
		TotalAmount:    cash.Amount,
		EffectiveDate:  cash.EffectiveDate,
	})
}

// quote prices amount at the fund's latest NAV on or before the date.
func quote(ctx context.Context, r interfaces.LedgerReader, fundID int64, amount models.Decimal, on models.Date) (price, shares models.Decimal, err error) {
	nav, err := r.LatestNavOnOrBefore(ctx, fundID, on)
	if errors.Is(err, common.ErrNotFound) {
		return price, shares, common.Invalidf("fund %d has no NAV on or before %s to price the subscription", fundID, on)
	}
	if err != nil {
		return price, shares, err
	}
	price = nav.ShareValue
	return price, models.NewDecimal(amount.DivRound(price.Decimal, shareScale)), nil
}
