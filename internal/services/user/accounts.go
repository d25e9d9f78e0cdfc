package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

// validRate accepts null or a fraction in [0,1].
func validRate(rate models.NullDecimal) error {
	if !rate.Valid {
		return nil
	}
	if rate.Decimal.IsNegative() || rate.Decimal.GreaterThan(decimal.NewFromInt(1)) {
		return common.Invalidf("commission rate must be between 0 and 1, got %s", rate.Decimal)
	}
	return nil
}

// ListAccounts returns the accounts of an existing user.
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	if _, err := s.users().GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	accounts, err := s.storage.LedgerStore().ListAccounts(ctx, models.ForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []*models.Account{}
	}
	return accounts, nil
}

func (s *Service) GetAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	a, err := s.storage.LedgerStore().GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// CreateAccount opens an account for an existing user.
func (s *Service) CreateAccount(ctx context.Context, in *models.AccountCreate) (*models.Account, error) {
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	if in.AccountNumber == "" {
		return nil, common.Invalidf("account number is required")
	}
	if err := validRate(in.CommissionRate); err != nil {
		return nil, err
	}
	if _, err := s.users().GetUser(ctx, in.UserID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	a, err := s.storage.LedgerStore().CreateAccount(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.logger.Info().
		Int64("account_id", a.ID).
		Str("user_id", a.UserID).
		Str("account_number", a.AccountNumber).
		Msg("Account created")
	return a, nil
}

// SetCommissionRate sets or clears an account's commission rate. It fails
// with ErrUnsupported on a ledger without the column.
func (s *Service) SetCommissionRate(ctx context.Context, accountID int64, rate models.NullDecimal) (*models.Account, error) {
	if err := validRate(rate); err != nil {
		return nil, err
	}
	ledger := s.storage.LedgerStore()
	if err := ledger.SetCommissionRate(ctx, accountID, rate); err != nil {
		return nil, fmt.Errorf("failed to set commission rate: %w", err)
	}
	a, err := ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	s.logger.Info().Int64("account_id", accountID).Str("rate", rate.String()).Bool("cleared", !rate.Valid).Msg("Commission rate set")
	return a, nil
}
