package models

import "time"

// Account is an investment account owned by a user. CommissionRate is a
// fraction in [0,1]; it is null when unset or when the deployment has no
// commission_rate column.
type Account struct {
	ID             int64       `json:"id"`
	UserID         string      `json:"user_id"`
	AccountNumber  string      `json:"account_number"`
	CommissionRate NullDecimal `json:"commission_rate"`
	CreatedAt      time.Time   `json:"created_at"`
}

// AccountCreate is the payload for opening an account.
type AccountCreate struct {
	UserID         string      `json:"user_id" yaml:"user_id"`
	AccountNumber  string      `json:"account_number" yaml:"account_number"`
	CommissionRate NullDecimal `json:"commission_rate" yaml:"commission_rate"`
}
