// Package interfaces defines service contracts for Fundboard
package interfaces

import (
	"context"

	"github.com/bobmcallan/fundboard/internal/models"
)

// SummaryService derives account summaries from the ledger
type SummaryService interface {
	// GetAccountSummaries values every account matched by filter, ordered by
	// user full name then account number.
	GetAccountSummaries(ctx context.Context, filter models.AccountFilter) ([]models.AccountSummary, error)
}

// PerformanceService assembles fund NAV series
type PerformanceService interface {
	// GetFundPerformance returns one fund's most recent limit NAVs,
	// ascending. limit 0 selects the configured default.
	GetFundPerformance(ctx context.Context, fundID int64, limit int) (*models.FundPerformance, error)

	// ListFundPerformance returns the series of every fund, ordered by fund id.
	ListFundPerformance(ctx context.Context, limit int) ([]models.FundPerformance, error)

	// GetLatestNavs resolves the latest NAV of every fund that has one.
	GetLatestNavs(ctx context.Context) (map[int64]*models.FundNav, error)

	// RenderChart draws the share value series of a fund as PNG.
	RenderChart(ctx context.Context, fundID int64, limit int) ([]byte, error)
}

// MovementService validates and records ledger facts
type MovementService interface {
	CreateCashMovement(ctx context.Context, in *models.CashMovementCreate) (*models.CashMovement, error)
	GetCashMovement(ctx context.Context, id int64) (*models.CashMovement, error)
	ListCashMovements(ctx context.Context) ([]*models.CashMovement, error)
	UpdateCashMovement(ctx context.Context, id int64, upd *models.CashMovementUpdate) (*models.CashMovement, error)
	DeleteCashMovement(ctx context.Context, id int64) error

	CreateShareMovement(ctx context.Context, in *models.FundShareMovementCreate) (*models.FundShareMovement, error)
	GetShareMovement(ctx context.Context, id int64) (*models.FundShareMovement, error)
	UpdateShareMovement(ctx context.Context, id int64, upd *models.FundShareMovementUpdate) (*models.FundShareMovement, error)
	DeleteShareMovement(ctx context.Context, id int64) error

	CreateNav(ctx context.Context, in *models.FundNavCreate) (*models.FundNav, error)
	GetNav(ctx context.Context, id int64) (*models.FundNav, error)
	ListNavs(ctx context.Context, fundID int64) ([]*models.FundNav, error)
	UpdateNav(ctx context.Context, id int64, upd *models.FundNavUpdate) (*models.FundNav, error)
	DeleteNav(ctx context.Context, id int64) error

	ListFunds(ctx context.Context) ([]*models.Fund, error)
	CreateFund(ctx context.Context, in *models.FundCreate) (*models.Fund, error)

	// UserMovements is the combined feed across all of a user's accounts.
	UserMovements(ctx context.Context, userID string) ([]*models.UserMovement, error)
	AccountMovements(ctx context.Context, accountID int64) ([]*models.UserMovement, error)
	CashShareReport(ctx context.Context) ([]*models.MovementReportRow, error)
}

// UserService manages identities and their accounts
type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByAuthSubject(ctx context.Context, subject string) (*models.User, error)
	CreateUser(ctx context.Context, in *models.UserCreate) (*models.User, error)
	// Signup registers the caller of a verified token as an active user.
	Signup(ctx context.Context, subject, email, name string) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, upd *models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error

	ListAccounts(ctx context.Context, userID string) ([]*models.Account, error)
	GetAccount(ctx context.Context, accountID int64) (*models.Account, error)
	CreateAccount(ctx context.Context, in *models.AccountCreate) (*models.Account, error)
	SetCommissionRate(ctx context.Context, accountID int64, rate models.NullDecimal) (*models.Account, error)
}
