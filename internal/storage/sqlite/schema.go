package sqlite

import (
	"context"
	"fmt"
)

// Schema is the ledger schema. Decimals are TEXT so values round-trip
// exactly; dates are TEXT 'YYYY-MM-DD'.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	account_number TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

CREATE TABLE IF NOT EXISTS funds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cash_movements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	type TEXT NOT NULL CHECK (type IN ('deposit', 'withdrawal', 'fee')),
	amount TEXT NOT NULL,
	currency TEXT NOT NULL,
	effective_date TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cash_movements_account ON cash_movements(account_id);

CREATE TABLE IF NOT EXISTS fund_share_movements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id INTEGER NOT NULL REFERENCES accounts(id),
	fund_id INTEGER NOT NULL REFERENCES funds(id),
	cash_movement_id INTEGER REFERENCES cash_movements(id) ON DELETE SET NULL,
	type TEXT NOT NULL CHECK (type IN ('subscription', 'redemption')),
	shares_change TEXT NOT NULL,
	share_price TEXT NOT NULL,
	total_amount TEXT NOT NULL,
	effective_date TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fsm_account_fund ON fund_share_movements(account_id, fund_id);
CREATE INDEX IF NOT EXISTS idx_fsm_cash ON fund_share_movements(cash_movement_id);

CREATE TABLE IF NOT EXISTS fund_navs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fund_id INTEGER NOT NULL REFERENCES funds(id),
	as_of_date TEXT NOT NULL,
	fund_accumulated TEXT NOT NULL,
	shares_amount TEXT NOT NULL,
	share_value TEXT NOT NULL,
	delta_previous TEXT,
	delta_since_origin TEXT,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fund_navs_fund_date ON fund_navs(fund_id, as_of_date);
`

// Migrate creates missing tables and, when configured, the optional
// accounts.commission_rate column.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.write.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	if !s.config.CommissionRateColumn {
		s.resetCapabilities()
		return nil
	}

	has, err := s.detectCommissionRate(ctx)
	if err != nil {
		return err
	}
	if !has {
		if _, err := s.write.ExecContext(ctx, `ALTER TABLE accounts ADD COLUMN commission_rate TEXT`); err != nil {
			return fmt.Errorf("failed to add commission_rate column: %w", err)
		}
		s.logger.Info().Msg("Added accounts.commission_rate column")
	}
	s.resetCapabilities()
	return nil
}

// HasCommissionRate reports whether accounts.commission_rate exists. The
// answer is detected once and cached for the store's lifetime.
func (s *Store) HasCommissionRate(ctx context.Context) (bool, error) {
	s.caps.mu.Lock()
	defer s.caps.mu.Unlock()

	if s.caps.detected {
		return s.caps.commissionRate, nil
	}
	has, err := s.detectCommissionRate(ctx)
	if err != nil {
		return false, err
	}
	s.caps.commissionRate = has
	s.caps.detected = true

	s.logger.Debug().Bool("commission_rate", has).Msg("Ledger capabilities detected")
	return has, nil
}

func (s *Store) resetCapabilities() {
	s.caps.mu.Lock()
	s.caps.detected = false
	s.caps.mu.Unlock()
}

func (s *Store) detectCommissionRate(ctx context.Context) (bool, error) {
	rows, err := s.read.QueryContext(ctx, `SELECT name FROM pragma_table_info('accounts')`)
	if err != nil {
		return false, fmt.Errorf("failed to inspect accounts table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == "commission_rate" {
			return true, nil
		}
	}
	return false, rows.Err()
}
