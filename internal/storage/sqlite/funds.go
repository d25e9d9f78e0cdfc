package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

func scanFund(sc scanner) (*models.Fund, error) {
	var f models.Fund
	if err := sc.Scan(&f.ID, &f.Name, &f.Currency, sqlTime{&f.CreatedAt}); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) GetFund(ctx context.Context, id int64) (*models.Fund, error) {
	f, err := scanFund(s.read.QueryRowContext(ctx,
		`SELECT id, name, currency, created_at FROM funds WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("fund %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return f, nil
}

func (s *Store) ListFunds(ctx context.Context) ([]*models.Fund, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT id, name, currency, created_at FROM funds ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var out []*models.Fund
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *Store) CreateFund(ctx context.Context, in *models.FundCreate) (*models.Fund, error) {
	res, err := s.write.ExecContext(ctx,
		`INSERT INTO funds (name, currency, created_at) VALUES (?, ?, ?)`,
		in.Name, in.Currency, s.timestamp())
	if err != nil {
		return nil, classify(err, "create fund")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create fund: %w", err)
	}
	return s.withWrites().GetFund(ctx, id)
}
