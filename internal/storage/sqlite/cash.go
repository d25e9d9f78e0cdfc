package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

// linked_fund_id is the fund of the newest subscription the movement triggered.
const cashColumns = `cm.id, cm.account_id, cm.type, cm.amount, cm.currency, cm.effective_date, cm.created_at,
	(SELECT fsm.fund_id FROM fund_share_movements fsm
		WHERE fsm.cash_movement_id = cm.id
		ORDER BY fsm.created_at DESC, fsm.id DESC LIMIT 1) AS linked_fund_id`

func scanCash(sc scanner) (*models.CashMovement, error) {
	var m models.CashMovement
	if err := sc.Scan(&m.ID, &m.AccountID, &m.Type, &m.Amount, &m.Currency, &m.EffectiveDate,
		sqlTime{&m.CreatedAt}, sqlInt64{&m.FundID}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetCashMovement(ctx context.Context, id int64) (*models.CashMovement, error) {
	m, err := scanCash(s.read.QueryRowContext(ctx, "SELECT "+cashColumns+" FROM cash_movements cm WHERE cm.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("cash movement %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash movement: %w", err)
	}
	return m, nil
}

func (s *Store) ListCashMovements(ctx context.Context) ([]*models.CashMovement, error) {
	rows, err := s.read.QueryContext(ctx, "SELECT "+cashColumns+` FROM cash_movements cm
		ORDER BY cm.effective_date DESC, cm.created_at DESC, cm.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash movements: %w", err)
	}
	defer rows.Close()

	var out []*models.CashMovement
	for rows.Next() {
		m, err := scanCash(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CashRows(ctx context.Context, filter models.AccountFilter) ([]models.CashRow, error) {
	rows, err := s.read.QueryContext(ctx, `SELECT cm.account_id, cm.type, cm.amount
		FROM cash_movements cm
		JOIN accounts a ON a.id = cm.account_id
		WHERE (? = '' OR a.user_id = ?)
		ORDER BY cm.account_id, cm.id`, filter.UserID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash rows: %w", err)
	}
	defer rows.Close()

	var out []models.CashRow
	for rows.Next() {
		var r models.CashRow
		if err := rows.Scan(&r.AccountID, &r.Type, &r.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan cash row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateCashMovement(ctx context.Context, in *models.CashMovementCreate) (*models.CashMovement, error) {
	res, err := s.write.ExecContext(ctx, `INSERT INTO cash_movements
		(account_id, type, amount, currency, effective_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.AccountID, in.Type, in.Amount, in.Currency, in.EffectiveDate, s.timestamp())
	if err != nil {
		return nil, classify(err, "create cash movement")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create cash movement: %w", err)
	}
	return s.withWrites().GetCashMovement(ctx, id)
}

func (s *Store) UpdateCashMovement(ctx context.Context, id int64, upd *models.CashMovementUpdate) error {
	var sets []string
	var args []any
	if upd.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, *upd.Type)
	}
	if upd.Amount != nil {
		sets, args = append(sets, "amount = ?"), append(args, *upd.Amount)
	}
	if upd.Currency != nil {
		sets, args = append(sets, "currency = ?"), append(args, *upd.Currency)
	}
	if upd.EffectiveDate != nil {
		sets, args = append(sets, "effective_date = ?"), append(args, *upd.EffectiveDate)
	}
	return s.update(ctx, "cash_movements", "cash movement", id, sets, args)
}

func (s *Store) DeleteCashMovement(ctx context.Context, id int64) error {
	res, err := s.write.ExecContext(ctx, `DELETE FROM cash_movements WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete cash movement")
	}
	return rowsAffected(res, "cash movement", id)
}
