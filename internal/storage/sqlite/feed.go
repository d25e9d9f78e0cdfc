package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bobmcallan/fundboard/internal/models"
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Movements unions cash and share movements of the given accounts, newest
// first. Equal timestamps fall back to kind then id for a stable order.
func (s *Store) Movements(ctx context.Context, accountIDs []int64) ([]*models.UserMovement, error) {
	if len(accountIDs) == 0 {
		return []*models.UserMovement{}, nil
	}
	in := placeholders(len(accountIDs))
	args := make([]any, 0, 2*len(accountIDs))
	for i := 0; i < 2; i++ {
		for _, id := range accountIDs {
			args = append(args, id)
		}
	}

	query := `
		SELECT cm.id, 'cash' AS kind, cm.account_id, cm.effective_date, cm.created_at,
			cm.type, cm.amount, cm.currency,
			NULL, NULL, NULL, NULL, NULL, NULL
		FROM cash_movements cm
		WHERE cm.account_id IN (` + in + `)
		UNION ALL
		SELECT fsm.id, 'fund_share' AS kind, fsm.account_id, fsm.effective_date, fsm.created_at,
			NULL, NULL, NULL,
			fsm.fund_id, f.name, fsm.shares_change, fsm.share_price, fsm.total_amount, fsm.type
		FROM fund_share_movements fsm
		JOIN funds f ON f.id = fsm.fund_id
		WHERE fsm.account_id IN (` + in + `)
		ORDER BY 4 DESC, 5 DESC, 2, 1 DESC`

	rows, err := s.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	out := []*models.UserMovement{}
	for rows.Next() {
		var (
			m                   models.UserMovement
			cashType, currency  sql.NullString
			fundName, shareType sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Type, &m.AccountID, &m.EffectiveDate, sqlTime{&m.CreatedAt},
			&cashType, &m.Amount, &currency,
			sqlInt64{&m.FundID}, &fundName, &m.SharesChange, &m.SharePrice, &m.TotalAmount, &shareType); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		if cashType.Valid {
			t := models.CashMovementType(cashType.String)
			m.CashType = &t
		}
		if currency.Valid {
			m.Currency = &currency.String
		}
		if fundName.Valid {
			m.FundName = &fundName.String
		}
		if shareType.Valid {
			t := models.ShareMovementType(shareType.String)
			m.ShareMovementType = &t
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CashShareReport lists every cash movement with the share movement it
// triggered. UserFullName is left for the caller to fill.
func (s *Store) CashShareReport(ctx context.Context) ([]*models.MovementReportRow, error) {
	rows, err := s.read.QueryContext(ctx, `
		SELECT a.user_id, a.id, a.account_number,
			cm.id, cm.type, cm.effective_date, cm.amount,
			fsm.id, fsm.shares_change, fsm.share_price
		FROM cash_movements cm
		JOIN accounts a ON a.id = cm.account_id
		LEFT JOIN fund_share_movements fsm ON fsm.cash_movement_id = cm.id
		ORDER BY cm.effective_date ASC, cm.id ASC, fsm.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash/share report: %w", err)
	}
	defer rows.Close()

	out := []*models.MovementReportRow{}
	for rows.Next() {
		var r models.MovementReportRow
		if err := rows.Scan(&r.UserID, &r.AccountID, &r.AccountNumber,
			&r.CashMovementID, &r.CashMovementType, &r.EffectiveDate, &r.Amount,
			sqlInt64{&r.FundShareMovementID}, &r.SharesChange, &r.SharePrice); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
