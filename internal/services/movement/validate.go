package movement

import (
	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
)

func positive(field string, v models.Decimal) error {
	if !v.IsPositive() {
		return common.Invalidf("%s must be positive, got %s", field, v)
	}
	return nil
}

func nonNegative(field string, v models.Decimal) error {
	if v.IsNegative() {
		return common.Invalidf("%s must not be negative, got %s", field, v)
	}
	return nil
}

func currency(code string) (string, error) {
	c, err := models.NormalizeCurrency(code)
	if err != nil {
		return "", common.Invalidf("%v", err)
	}
	return c, nil
}

func validateCashCreate(in *models.CashMovementCreate) error {
	if in.AccountID <= 0 {
		return common.Invalidf("account_id is required")
	}
	if err := models.ValidateCashMovementType(in.Type); err != nil {
		return common.Invalidf("%v", err)
	}
	if err := positive("amount", in.Amount); err != nil {
		return err
	}
	c, err := currency(in.Currency)
	if err != nil {
		return err
	}
	in.Currency = c
	if in.EffectiveDate.IsZero() {
		in.EffectiveDate = models.Today()
	}
	if in.FundID != nil && in.Type != models.CashDeposit {
		return common.Invalidf("fund_id is only accepted on deposits")
	}
	return nil
}

func validateCashUpdate(upd *models.CashMovementUpdate) error {
	if upd.Type != nil {
		if err := models.ValidateCashMovementType(*upd.Type); err != nil {
			return common.Invalidf("%v", err)
		}
	}
	if upd.Amount != nil {
		if err := positive("amount", *upd.Amount); err != nil {
			return err
		}
	}
	if upd.Currency != nil {
		c, err := currency(*upd.Currency)
		if err != nil {
			return err
		}
		upd.Currency = &c
	}
	if upd.EffectiveDate != nil && upd.EffectiveDate.IsZero() {
		return common.Invalidf("effective_date cannot be empty")
	}
	return nil
}

func validateShareCreate(in *models.FundShareMovementCreate) error {
	if in.AccountID <= 0 || in.FundID <= 0 {
		return common.Invalidf("account_id and fund_id are required")
	}
	if err := models.ValidateShareMovementType(in.Type); err != nil {
		return common.Invalidf("%v", err)
	}
	if err := positive("shares_change", in.SharesChange); err != nil {
		return err
	}
	if err := positive("share_price", in.SharePrice); err != nil {
		return err
	}
	if err := nonNegative("total_amount", in.TotalAmount); err != nil {
		return err
	}
	if in.EffectiveDate.IsZero() {
		in.EffectiveDate = models.Today()
	}
	return nil
}

func validateShareUpdate(upd *models.FundShareMovementUpdate) error {
	if upd.SharesChange != nil {
		if err := positive("shares_change", *upd.SharesChange); err != nil {
			return err
		}
	}
	if upd.SharePrice != nil {
		if err := positive("share_price", *upd.SharePrice); err != nil {
			return err
		}
	}
	if upd.TotalAmount != nil {
		if err := nonNegative("total_amount", *upd.TotalAmount); err != nil {
			return err
		}
	}
	if upd.EffectiveDate != nil && upd.EffectiveDate.IsZero() {
		return common.Invalidf("effective_date cannot be empty")
	}
	return nil
}

func validateNavCreate(in *models.FundNavCreate) error {
	if in.FundID <= 0 {
		return common.Invalidf("fund_id is required")
	}
	if in.AsOfDate.IsZero() {
		return common.Invalidf("as_of_date is required")
	}
	if err := positive("share_value", in.ShareValue); err != nil {
		return err
	}
	if err := nonNegative("fund_accumulated", in.FundAccumulated); err != nil {
		return err
	}
	return nonNegative("shares_amount", in.SharesAmount)
}

func validateNavUpdate(upd *models.FundNavUpdate) error {
	if upd.AsOfDate != nil && upd.AsOfDate.IsZero() {
		return common.Invalidf("as_of_date cannot be empty")
	}
	if upd.ShareValue != nil {
		if err := positive("share_value", *upd.ShareValue); err != nil {
			return err
		}
	}
	if upd.FundAccumulated != nil {
		if err := nonNegative("fund_accumulated", *upd.FundAccumulated); err != nil {
			return err
		}
	}
	if upd.SharesAmount != nil {
		if err := nonNegative("shares_amount", *upd.SharesAmount); err != nil {
			return err
		}
	}
	return nil
}
