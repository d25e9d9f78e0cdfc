package models

import (
	"fmt"
	"time"
)

// CashMovementType classifies a cash movement.
type CashMovementType string

const (
	CashDeposit    CashMovementType = "deposit"
	CashWithdrawal CashMovementType = "withdrawal"
	CashFee        CashMovementType = "fee"
)

// ValidateCashMovementType returns an error unless t is a known cash type.
func ValidateCashMovementType(t CashMovementType) error {
	switch t {
	case CashDeposit, CashWithdrawal, CashFee:
		return nil
	}
	return fmt.Errorf("invalid cash movement type %q: must be deposit, withdrawal or fee", t)
}

// ShareMovementType classifies a fund share movement.
type ShareMovementType string

const (
	ShareSubscription ShareMovementType = "subscription"
	ShareRedemption   ShareMovementType = "redemption"
)

// ValidateShareMovementType returns an error unless t is a known share type.
func ValidateShareMovementType(t ShareMovementType) error {
	switch t {
	case ShareSubscription, ShareRedemption:
		return nil
	}
	return fmt.Errorf("invalid share movement type %q: must be subscription or redemption", t)
}

// CashMovement is one deposit, withdrawal or fee. Amount is a positive
// magnitude; the type carries the sign.
type CashMovement struct {
	ID            int64            `json:"id"`
	AccountID     int64            `json:"account_id"`
	Type          CashMovementType `json:"type"`
	Amount        Decimal          `json:"amount"`
	Currency      string           `json:"currency"`
	EffectiveDate Date             `json:"effective_date"`
	CreatedAt     time.Time        `json:"created_at"`
	// UserName and FundID are display joins: the owning user's name and the
	// fund of the subscription this movement triggered, if any.
	UserName *string `json:"user_name,omitempty"`
	FundID   *int64  `json:"fund_id,omitempty"`
}

// CashMovementCreate is the create payload. A deposit with FundID also
// subscribes the deposited amount into that fund.
type CashMovementCreate struct {
	AccountID     int64            `json:"account_id" yaml:"account_id"`
	Type          CashMovementType `json:"type" yaml:"type"`
	Amount        Decimal          `json:"amount" yaml:"amount"`
	Currency      string           `json:"currency" yaml:"currency"`
	EffectiveDate Date             `json:"effective_date" yaml:"effective_date"`
	FundID        *int64           `json:"fund_id,omitempty" yaml:"fund_id"`
}

// CashMovementUpdate carries optional changes.
type CashMovementUpdate struct {
	Type          *CashMovementType `json:"type,omitempty"`
	Amount        *Decimal          `json:"amount,omitempty"`
	Currency      *string           `json:"currency,omitempty"`
	EffectiveDate *Date             `json:"effective_date,omitempty"`
	FundID        *int64            `json:"fund_id,omitempty"`
}

// FundShareMovement is a subscription or redemption of fund shares.
// SharesChange is a positive magnitude; TotalAmount is stored as given.
type FundShareMovement struct {
	ID             int64             `json:"id"`
	AccountID      int64             `json:"account_id"`
	FundID         int64             `json:"fund_id"`
	CashMovementID *int64            `json:"cash_movement_id"`
	Type           ShareMovementType `json:"type"`
	SharesChange   Decimal           `json:"shares_change"`
	SharePrice     Decimal           `json:"share_price"`
	TotalAmount    Decimal           `json:"total_amount"`
	EffectiveDate  Date              `json:"effective_date"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FundShareMovementCreate is the create payload.
type FundShareMovementCreate struct {
	AccountID      int64             `json:"account_id" yaml:"account_id"`
	FundID         int64             `json:"fund_id" yaml:"fund_id"`
	CashMovementID *int64            `json:"cash_movement_id,omitempty" yaml:"cash_movement_id"`
	Type           ShareMovementType `json:"type" yaml:"type"`
	SharesChange   Decimal           `json:"shares_change" yaml:"shares_change"`
	SharePrice     Decimal           `json:"share_price" yaml:"share_price"`
	TotalAmount    Decimal           `json:"total_amount" yaml:"total_amount"`
	EffectiveDate  Date              `json:"effective_date" yaml:"effective_date"`
}

// FundShareMovementUpdate carries optional changes.
type FundShareMovementUpdate struct {
	FundID        *int64   `json:"fund_id,omitempty"`
	SharesChange  *Decimal `json:"shares_change,omitempty"`
	SharePrice    *Decimal `json:"share_price,omitempty"`
	TotalAmount   *Decimal `json:"total_amount,omitempty"`
	EffectiveDate *Date    `json:"effective_date,omitempty"`
}

// UserMovementKind tags an entry of the combined movement feed.
type UserMovementKind string

const (
	MovementKindCash      UserMovementKind = "cash"
	MovementKindFundShare UserMovementKind = "fund_share"
)

// UserMovement is one row of the combined cash + share feed. Only the
// fields of its kind are populated.
type UserMovement struct {
	ID            int64            `json:"id"`
	Type          UserMovementKind `json:"type"`
	AccountID     int64            `json:"account_id"`
	EffectiveDate Date             `json:"effective_date"`
	CreatedAt     time.Time        `json:"created_at"`

	CashType *CashMovementType `json:"cash_type"`
	Amount   NullDecimal       `json:"amount"`
	Currency *string           `json:"currency"`

	FundID            *int64             `json:"fund_id"`
	FundName          *string            `json:"fund_name"`
	SharesChange      NullDecimal        `json:"shares_change"`
	SharePrice        NullDecimal        `json:"share_price"`
	TotalAmount       NullDecimal        `json:"total_amount"`
	ShareMovementType *ShareMovementType `json:"share_movement_type"`
}

// MovementReportRow pairs a cash movement with the share movement it
// triggered, if any.
type MovementReportRow struct {
	UserID              string           `json:"user_id"`
	UserFullName        string           `json:"user_full_name"`
	AccountID           int64            `json:"account_id"`
	AccountNumber       string           `json:"account_number"`
	CashMovementID      int64            `json:"cash_movement_id"`
	CashMovementType    CashMovementType `json:"cash_movement_type"`
	EffectiveDate       Date             `json:"effective_date"`
	Amount              Decimal          `json:"amount"`
	FundShareMovementID *int64           `json:"fund_share_movement_id"`
	SharesChange        NullDecimal      `json:"shares_change"`
	SharePrice          NullDecimal      `json:"share_price"`
}
