// Package interfaces defines service contracts for Fundboard
package interfaces

import (
	"context"

	"github.com/bobmcallan/fundboard/internal/models"
)

// StorageManager coordinates both storage backends
type StorageManager interface {
	// InternalStore holds identities (SurrealDB).
	InternalStore() InternalStore
	// LedgerStore holds accounts, funds, movements and NAVs (SQLite).
	LedgerStore() LedgerStore

	Close() error
}

// InternalStore manages user identities and system-level KV.
type InternalStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByAuthSubject(ctx context.Context, subject string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]*models.User, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// LedgerReader is the read side of the ledger. Every method is safe to call
// inside a ReadSnapshot.
type LedgerReader interface {
	// HasCommissionRate reports whether accounts.commission_rate exists.
	HasCommissionRate(ctx context.Context) (bool, error)

	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*models.Account, error)
	ListAccounts(ctx context.Context, filter models.AccountFilter) ([]*models.Account, error)

	GetFund(ctx context.Context, id int64) (*models.Fund, error)
	// ListFunds returns funds ordered by name.
	ListFunds(ctx context.Context) ([]*models.Fund, error)

	// CashRows returns the raw cash movements of the filtered accounts.
	CashRows(ctx context.Context, filter models.AccountFilter) ([]models.CashRow, error)
	// ShareRows returns the raw share movements of the filtered accounts.
	ShareRows(ctx context.Context, filter models.AccountFilter) ([]models.ShareRow, error)

	// LatestNavCandidates returns, per fund, every NAV dated on that fund's
	// most recent as_of_date. Ties are left for the caller to break.
	LatestNavCandidates(ctx context.Context) ([]*models.FundNav, error)
	// RecentNavs returns at most limit NAVs per fund, most recent first
	// (as_of_date, created_at, id descending). fundID 0 selects every fund.
	RecentNavs(ctx context.Context, fundID int64, limit int) ([]*models.FundNav, error)
	// LatestNavOnOrBefore returns the newest NAV of a fund dated no later than on.
	LatestNavOnOrBefore(ctx context.Context, fundID int64, on models.Date) (*models.FundNav, error)

	GetCashMovement(ctx context.Context, id int64) (*models.CashMovement, error)
	// ListCashMovements returns every cash movement, newest first, with the
	// linked subscription's fund id.
	ListCashMovements(ctx context.Context) ([]*models.CashMovement, error)
	GetShareMovement(ctx context.Context, id int64) (*models.FundShareMovement, error)
	ListShareMovements(ctx context.Context, accountID int64) ([]*models.FundShareMovement, error)
	// ShareMovementForCash returns the subscription triggered by a cash
	// movement, or nil.
	ShareMovementForCash(ctx context.Context, cashID int64) (*models.FundShareMovement, error)

	GetNav(ctx context.Context, id int64) (*models.FundNav, error)
	// ListNavs returns NAVs newest first; fundID 0 selects every fund.
	ListNavs(ctx context.Context, fundID int64) ([]*models.FundNav, error)

	// Movements returns the combined cash and share feed for the given
	// accounts, newest first.
	Movements(ctx context.Context, accountIDs []int64) ([]*models.UserMovement, error)
	// CashShareReport pairs every cash movement with its subscription.
	CashShareReport(ctx context.Context) ([]*models.MovementReportRow, error)
}

// LedgerWriter adds the write operations. Creates return the stored row.
type LedgerWriter interface {
	LedgerReader

	CreateAccount(ctx context.Context, in *models.AccountCreate) (*models.Account, error)
	SetCommissionRate(ctx context.Context, accountID int64, rate models.NullDecimal) error
	CreateFund(ctx context.Context, in *models.FundCreate) (*models.Fund, error)

	CreateCashMovement(ctx context.Context, in *models.CashMovementCreate) (*models.CashMovement, error)
	UpdateCashMovement(ctx context.Context, id int64, upd *models.CashMovementUpdate) error
	DeleteCashMovement(ctx context.Context, id int64) error

	CreateShareMovement(ctx context.Context, in *models.FundShareMovementCreate) (*models.FundShareMovement, error)
	UpdateShareMovement(ctx context.Context, id int64, upd *models.FundShareMovementUpdate) error
	DeleteShareMovement(ctx context.Context, id int64) error

	CreateNav(ctx context.Context, in *models.FundNavCreate) (*models.FundNav, error)
	UpdateNav(ctx context.Context, id int64, upd *models.FundNavUpdate) error
	DeleteNav(ctx context.Context, id int64) error
}

// LedgerStore is the ledger handle owned by the storage manager.
type LedgerStore interface {
	LedgerWriter

	// ReadSnapshot runs fn inside one read transaction so every read sees
	// the same ledger state.
	ReadSnapshot(ctx context.Context, fn func(LedgerReader) error) error
	// WriteTx runs fn inside one write transaction; fn's error rolls back.
	WriteTx(ctx context.Context, fn func(LedgerWriter) error) error

	// Migrate creates or upgrades the schema.
	Migrate(ctx context.Context) error
	Close() error
}
