package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

const navColumns = `n.id, n.fund_id, n.as_of_date, n.fund_accumulated, n.shares_amount,
	n.share_value, n.delta_previous, n.delta_since_origin, n.created_at`

func scanNav(sc scanner) (*models.FundNav, error) {
	var n models.FundNav
	if err := sc.Scan(&n.ID, &n.FundID, &n.AsOfDate, &n.FundAccumulated, &n.SharesAmount,
		&n.ShareValue, &n.DeltaPrevious, &n.DeltaSinceOrigin, sqlTime{&n.CreatedAt}); err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNavs(rows *sql.Rows) ([]*models.FundNav, error) {
	defer rows.Close()
	var out []*models.FundNav
	for rows.Next() {
		n, err := scanNav(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nav: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) GetNav(ctx context.Context, id int64) (*models.FundNav, error) {
	n, err := scanNav(s.read.QueryRowContext(ctx, "SELECT "+navColumns+" FROM fund_navs n WHERE n.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("nav %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nav: %w", err)
	}
	return n, nil
}

func (s *Store) ListNavs(ctx context.Context, fundID int64) ([]*models.FundNav, error) {
	rows, err := s.read.QueryContext(ctx, "SELECT "+navColumns+` FROM fund_navs n
		WHERE (? = 0 OR n.fund_id = ?)
		ORDER BY n.as_of_date DESC, n.created_at DESC, n.id DESC`, fundID, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list navs: %w", err)
	}
	return collectNavs(rows)
}

func (s *Store) LatestNavCandidates(ctx context.Context) ([]*models.FundNav, error) {
	rows, err := s.read.QueryContext(ctx, "SELECT "+navColumns+` FROM fund_navs n
		JOIN (SELECT fund_id, MAX(as_of_date) AS max_date FROM fund_navs GROUP BY fund_id) m
			ON m.fund_id = n.fund_id AND m.max_date = n.as_of_date
		ORDER BY n.fund_id, n.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest navs: %w", err)
	}
	return collectNavs(rows)
}

func (s *Store) RecentNavs(ctx context.Context, fundID int64, limit int) ([]*models.FundNav, error) {
	if limit < 1 {
		return nil, common.Invalidf("limit must be positive, got %d", limit)
	}
	rows, err := s.read.QueryContext(ctx, "SELECT "+navColumns+` FROM (
			SELECT fund_navs.*, ROW_NUMBER() OVER (
				PARTITION BY fund_id ORDER BY as_of_date DESC, created_at DESC, id DESC
			) AS rn
			FROM fund_navs
			WHERE (? = 0 OR fund_id = ?)
		) n
		WHERE n.rn <= ?
		ORDER BY n.fund_id, n.as_of_date DESC, n.created_at DESC, n.id DESC`,
		fundID, fundID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent navs: %w", err)
	}
	return collectNavs(rows)
}

func (s *Store) LatestNavOnOrBefore(ctx context.Context, fundID int64, on models.Date) (*models.FundNav, error) {
	n, err := scanNav(s.read.QueryRowContext(ctx, "SELECT "+navColumns+` FROM fund_navs n
		WHERE n.fund_id = ? AND n.as_of_date <= ?
		ORDER BY n.as_of_date DESC, n.created_at DESC, n.id DESC
		LIMIT 1`, fundID, on))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("nav for fund %d on or before %s", fundID, on)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nav: %w", err)
	}
	return n, nil
}

func (s *Store) CreateNav(ctx context.Context, in *models.FundNavCreate) (*models.FundNav, error) {
	res, err := s.write.ExecContext(ctx, `INSERT INTO fund_navs
		(fund_id, as_of_date, fund_accumulated, shares_amount, share_value, delta_previous, delta_since_origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.FundID, in.AsOfDate, in.FundAccumulated, in.SharesAmount, in.ShareValue,
		in.DeltaPrevious, in.DeltaSinceOrigin, s.timestamp())
	if err != nil {
		return nil, classify(err, "create nav")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create nav: %w", err)
	}
	return s.withWrites().GetNav(ctx, id)
}

func (s *Store) UpdateNav(ctx context.Context, id int64, upd *models.FundNavUpdate) error {
	var sets []string
	var args []any
	if upd.AsOfDate != nil {
		sets, args = append(sets, "as_of_date = ?"), append(args, *upd.AsOfDate)
	}
	if upd.FundAccumulated != nil {
		sets, args = append(sets, "fund_accumulated = ?"), append(args, *upd.FundAccumulated)
	}
	if upd.SharesAmount != nil {
		sets, args = append(sets, "shares_amount = ?"), append(args, *upd.SharesAmount)
	}
	if upd.ShareValue != nil {
		sets, args = append(sets, "share_value = ?"), append(args, *upd.ShareValue)
	}
	if upd.DeltaPrevious != nil {
		sets, args = append(sets, "delta_previous = ?"), append(args, *upd.DeltaPrevious)
	}
	if upd.DeltaSinceOrigin != nil {
		sets, args = append(sets, "delta_since_origin = ?"), append(args, *upd.DeltaSinceOrigin)
	}
	return s.update(ctx, "fund_navs", "nav", id, sets, args)
}

func (s *Store) DeleteNav(ctx context.Context, id int64) error {
	res, err := s.write.ExecContext(ctx, `DELETE FROM fund_navs WHERE id = ?`, id)
	if err != nil {
		return classify(err, "delete nav")
	}
	return rowsAffected(res, "nav", id)
}

// update applies a partial update. With nothing to set it only checks the
// row exists.
func (s *Store) update(ctx context.Context, table, what string, id int64, sets []string, args []any) error {
	if len(sets) == 0 {
		var one int
		err := s.write.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return common.NotFoundf("%s %d", what, id)
		}
		return err
	}
	args = append(args, id)
	res, err := s.write.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return classify(err, "update "+what)
	}
	return rowsAffected(res, what, id)
}
