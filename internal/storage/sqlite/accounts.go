package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

// accountColumns selects NULL for the rate when the column is absent.
func (s *Store) accountColumns(ctx context.Context) (string, error) {
	has, err := s.HasCommissionRate(ctx)
	if err != nil {
		return "", err
	}
	rate := "NULL"
	if has {
		rate = "a.commission_rate"
	}
	return "a.id, a.user_id, a.account_number, " + rate + ", a.created_at", nil
}

func scanAccount(sc scanner) (*models.Account, error) {
	var a models.Account
	if err := sc.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.CommissionRate, sqlTime{&a.CreatedAt}); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	cols, err := s.accountColumns(ctx)
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(s.read.QueryRowContext(ctx, "SELECT "+cols+" FROM accounts a WHERE a.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (s *Store) GetAccountByNumber(ctx context.Context, number string) (*models.Account, error) {
	cols, err := s.accountColumns(ctx)
	if err != nil {
		return nil, err
	}
	a, err := scanAccount(s.read.QueryRowContext(ctx, "SELECT "+cols+" FROM accounts a WHERE a.account_number = ?", number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("account %q", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error) {
	cols, err := s.accountColumns(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.read.QueryContext(ctx,
		"SELECT "+cols+" FROM accounts a WHERE (? = '' OR a.user_id = ?) ORDER BY a.id",
		filter.UserID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAccount(ctx context.Context, in *models.AccountCreate) (*models.Account, error) {
	has, err := s.HasCommissionRate(ctx)
	if err != nil {
		return nil, err
	}

	var res sql.Result
	if has {
		res, err = s.write.ExecContext(ctx,
			`INSERT INTO accounts (user_id, account_number, commission_rate, created_at) VALUES (?, ?, ?, ?)`,
			in.UserID, in.AccountNumber, in.CommissionRate, s.timestamp())
	} else {
		if in.CommissionRate.Valid {
			return nil, fmt.Errorf("commission rate is not supported by this ledger: %w", common.ErrUnsupported)
		}
		res, err = s.write.ExecContext(ctx,
			`INSERT INTO accounts (user_id, account_number, created_at) VALUES (?, ?, ?)`,
			in.UserID, in.AccountNumber, s.timestamp())
	}
	if err != nil {
		return nil, classify(err, "create account")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.withWrites().GetAccount(ctx, id)
}

func (s *Store) SetCommissionRate(ctx context.Context, accountID int64, rate models.NullDecimal) error {
	has, err := s.HasCommissionRate(ctx)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("commission rate is not supported by this ledger: %w", common.ErrUnsupported)
	}
	res, err := s.write.ExecContext(ctx, `UPDATE accounts SET commission_rate = ? WHERE id = ?`, rate, accountID)
	if err != nil {
		return classify(err, "set commission rate")
	}
	return rowsAffected(res, "account", accountID)
}

// withWrites returns a store whose reads observe its own writes: inside a
// transaction that is s itself, otherwise reads move to the write handle.
func (s *Store) withWrites() *Store {
	if s.inTx {
		return s
	}
	c := *s
	c.read = s.write
	return &c
}
