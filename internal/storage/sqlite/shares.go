package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

const shareColumns = `fsm.id, fsm.account_id, fsm.fund_id, fsm.cash_movement_id, fsm.type,
	fsm.shares_change, fsm.share_price, fsm.total_amount, fsm.effective_date, fsm.created_at`

func scanShare(sc scanner) (*models.FundShareMovement, error) {
	var m models.FundShareMovement
	if err := sc.Scan(&m.ID, &m.AccountID, &m.FundID, sqlInt64{&m.CashMovementID}, &m.Type,
		&m.SharesChange, &m.SharePrice, &m.TotalAmount, &m.EffectiveDate, sqlTime{&m.CreatedAt}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetShareMovement(ctx context.Context, id int64) (*models.FundShareMovement, error) {
	m, err := scanShare(s.read.QueryRowContext(ctx, "SELECT "+shareColumns+" FROM fund_share_movements fsm WHERE fsm.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("fund share movement %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund share movement: %w", err)
	}
	return m, nil
}

func (s *Store) ShareMovementForCash(ctx context.Context, cashID int64) (*models.FundShareMovement, error) {
	m, err := scanShare(s.read.QueryRowContext(ctx, "SELECT "+shareColumns+` FROM fund_share_movements fsm
		WHERE fsm.cash_movement_id = ?
		ORDER BY fsm.created_at DESC, fsm.id DESC LIMIT 1`, cashID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked share movement: %w", err)
	}
	return m, nil
}

func (s *Store) ListShareMovements(ctx context.Context, accountID int64) ([]*models.FundShareMovement, error) {
	rows, err := s.read.QueryContext(ctx, "SELECT "+shareColumns+` FROM fund_share_movements fsm
		WHERE fsm.account_id = ?
		ORDER BY fsm.effective_date DESC, fsm.created_at DESC, fsm.id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund share movements: %w", err)
	}
	defer rows.Close()

	var out []*models.FundShareMovement
	for rows.Next() {
		m, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund share movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ShareRows(ctx context.Context, filter models.AccountFilter) ([]models.ShareRow, error) {
	rows, err := s.read.QueryContext(ctx, `SELECT fsm.account_id, fsm.fund_id, fsm.type, fsm.shares_change
		FROM fund_share_movements fsm
		JOIN accounts a ON a.id = fsm.account_id
		WHERE (? = '' OR a.user_id = ?)
		ORDER BY fsm.account_id, fsm.fund_id, fsm.id`, filter.UserID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query share rows: %w", err)
	}
	defer rows.Close()

	var out []models.ShareRow
	for rows.Next() {
		var r models.ShareRow
		if err := rows.Scan(&r.AccountID, &r.FundID, &r.Type, &r.SharesChange); err != nil {
			return nil, fmt.Errorf("failed to scan share row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateShareMovement(ctx context.Context, in *models.FundShareMovementCreate) (*models.FundShareMovement, error) {
	var cashID any
	if in.CashMovementID != nil {
		cashID = *in.CashMovementID
	}
	res, err := s.write.ExecContext(ctx, `INSERT INTO fund_share_movements
		(account_id, fund_id, cash_movement_id, type, shares_change, share_price, total_amount, effective_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.AccountID, in.FundID, cashID, in.Type, in.SharesChange, in.SharePrice, in.TotalAmount,
		in.EffectiveDate, s.timestamp())
	if err != nil {
		return nil, classify(err, "create fund share movement")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create fund share movement: %w", err)
	}
	return s.withWrites().GetShareMovement(ctx, id)
}

func (s *Store) UpdateShareMovement(ctx context.Context, id int64, upd *models.FundShareMovementUpdate) error {
	var sets []string
	var args []any
	if upd.FundID != nil {
		sets, args = append(sets, "fund_id = ?"), append(args, *upd.FundID)
	}
	if upd.SharesChange != nil {
		sets, args = append(sets, "shares_change = ?"), append(args, *upd.SharesChange)
	}
	if upd.SharePrice != nil {
		sets, args = append(sets, "share_price = ?"), append(args, *upd.SharePrice)
	}
	if upd.TotalAmount != nil {
		sets, args = append(sets, "total_amount = ?"), append(args, *upd.TotalAmount)
	}
	if upd.EffectiveDate != nil {
		sets, args = append(sets, "effective_date = ?"), append(args, *upd.EffectiveDate)
	}
	return s.update(ctx, "fund_share_movements", "fund share movement", id, sets, args)
}

func (s *Store) DeleteShareMovement(ctx context.Context, id int64) error {
	res, err := s.write.ExecContext(ctx, `DELETE FROM fund_share_movements WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete fund share movement")
	}
	return rowsAffected(res, "fund share movement", id)
}
