package models

import (
	"github.com/shopspring/decimal"
)

// FundPosition is the derived holding of one account in one fund.
// LatestShareValue and MarketValue are null when the fund has no NAV.
type FundPosition struct {
	FundID           int64               `json:"fund_id"`
	FundName         string              `json:"fund_name"`
	Currency         string              `json:"currency"`
	TotalShares      decimal.Decimal     `json:"total_shares"`
	LatestShareValue NullDecimal         `json:"latest_share_value"`
	MarketValue      decimal.NullDecimal `json:"market_value"`
}

// AccountSummary is the derived read model of an account. TotalFees
// includes the calculated commission and NetInvested is reported after it.
// CommissionRate is null when the account has no rate or a zero rate.
type AccountSummary struct {
	AccountID        int64               `json:"account_id"`
	AccountNumber    string              `json:"account_number"`
	UserID           string              `json:"user_id"`
	UserFullName     *string             `json:"user_full_name"`
	UserEmail        *string             `json:"user_email"`
	CommissionRate   NullDecimal         `json:"commission_rate"`
	TotalDeposits    decimal.Decimal     `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal     `json:"total_withdrawals"`
	TotalFees        decimal.Decimal     `json:"total_fees"`
	NetInvested      decimal.Decimal     `json:"net_invested"`
	Positions        []FundPosition      `json:"positions"`
}

// AccountFilter selects the accounts a summary covers. An empty UserID
// selects every account.
type AccountFilter struct {
	UserID string
}

// AllAccounts is the unrestricted filter.
var AllAccounts = AccountFilter{}

// ForUser restricts a summary to one user's accounts.
func ForUser(userID string) AccountFilter { return AccountFilter{UserID: userID} }

// IsAll reports whether the filter is unrestricted.
func (f AccountFilter) IsAll() bool { return f.UserID == "" }

// CashTotals are the per-account sums of cash movements by type.
type CashTotals struct {
	Deposits    decimal.Decimal
	Withdrawals decimal.Decimal
	Fees        decimal.Decimal
}

// CashRow is the minimal view of a cash movement the valuation engine needs.
type CashRow struct {
	AccountID int64
	Type      CashMovementType
	Amount    decimal.Decimal
}

// ShareRow is the minimal view of a share movement the position aggregator
// needs.
type ShareRow struct {
	AccountID    int64
	FundID       int64
	Type         ShareMovementType
	SharesChange decimal.Decimal
}
