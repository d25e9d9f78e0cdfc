package models

import "time"

// Fund is an investable fund. Currency is a label only.
type Fund struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// FundCreate is the payload for registering a fund.
type FundCreate struct {
	Name     string `json:"name" yaml:"name"`
	Currency string `json:"currency" yaml:"currency"`
}

// FundNav is one NAV observation for a fund.
type FundNav struct {
	ID               int64       `json:"id"`
	FundID           int64       `json:"fund_id"`
	AsOfDate         Date        `json:"as_of_date"`
	FundAccumulated  Decimal     `json:"fund_accumulated"`
	SharesAmount     Decimal     `json:"shares_amount"`
	ShareValue       Decimal     `json:"share_value"`
	DeltaPrevious    NullDecimal `json:"delta_previous"`
	DeltaSinceOrigin NullDecimal `json:"delta_since_origin"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Point strips identity fields for the performance series.
func (n FundNav) Point() NavPoint {
	return NavPoint{
		AsOfDate:         n.AsOfDate,
		FundAccumulated:  n.FundAccumulated,
		SharesAmount:     n.SharesAmount,
		ShareValue:       n.ShareValue,
		DeltaPrevious:    n.DeltaPrevious,
		DeltaSinceOrigin: n.DeltaSinceOrigin,
	}
}

// FundNavCreate is the create payload.
type FundNavCreate struct {
	FundID           int64       `json:"fund_id" yaml:"fund_id"`
	AsOfDate         Date        `json:"as_of_date" yaml:"as_of_date"`
	FundAccumulated  Decimal     `json:"fund_accumulated" yaml:"fund_accumulated"`
	SharesAmount     Decimal     `json:"shares_amount" yaml:"shares_amount"`
	ShareValue       Decimal     `json:"share_value" yaml:"share_value"`
	DeltaPrevious    NullDecimal `json:"delta_previous" yaml:"delta_previous"`
	DeltaSinceOrigin NullDecimal `json:"delta_since_origin" yaml:"delta_since_origin"`
}

// FundNavUpdate carries optional changes. The delta fields cannot be
// cleared through an update, only replaced.
type FundNavUpdate struct {
	AsOfDate         *Date    `json:"as_of_date,omitempty"`
	FundAccumulated  *Decimal `json:"fund_accumulated,omitempty"`
	SharesAmount     *Decimal `json:"shares_amount,omitempty"`
	ShareValue       *Decimal `json:"share_value,omitempty"`
	DeltaPrevious    *Decimal `json:"delta_previous,omitempty"`
	DeltaSinceOrigin *Decimal `json:"delta_since_origin,omitempty"`
}

// NavPoint is a NAV observation without identity, as served in a series.
type NavPoint struct {
	AsOfDate         Date        `json:"as_of_date"`
	FundAccumulated  Decimal     `json:"fund_accumulated"`
	SharesAmount     Decimal     `json:"shares_amount"`
	ShareValue       Decimal     `json:"share_value"`
	DeltaPrevious    NullDecimal `json:"delta_previous"`
	DeltaSinceOrigin NullDecimal `json:"delta_since_origin"`
}

// FundPerformance is a fund with its recent NAV series in ascending date
// order. LatestShareValue is the share value of the last point, or null
// when the fund has no observations.
type FundPerformance struct {
	FundID           int64       `json:"fund_id"`
	FundName         string      `json:"fund_name"`
	Currency         string      `json:"currency"`
	LatestShareValue NullDecimal `json:"latest_share_value"`
	Navs             []NavPoint  `json:"navs"`
}
