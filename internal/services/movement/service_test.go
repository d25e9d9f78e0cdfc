package movement

import (
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	testcommon "github.com/bobmcallan/fundboard/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) models.Decimal { return models.RequireDecimal(s) }

type fixture struct {
	ctx     context.Context
	storage *testcommon.TestStorage
	svc     *Service
	account *models.Account
	fund    *models.Fund
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	storage := testcommon.NewTestStorage(t, true)
	storage.Internal.AddUser("u1", "sub-1", "Ada Lovelace", false)

	svc := NewService(storage, common.NewSilentLogger())

	account, err := storage.Ledger.CreateAccount(ctx, &models.AccountCreate{UserID: "u1", AccountNumber: "ACC-1"})
	require.NoError(t, err)
	fund, err := svc.CreateFund(ctx, &models.FundCreate{Name: "Growth", Currency: "usd"})
	require.NoError(t, err)

	return &fixture{ctx: ctx, storage: storage, svc: svc, account: account, fund: fund}
}

func (f *fixture) nav(t *testing.T, on models.Date, value string) *models.FundNav {
	t.Helper()
	n, err := f.svc.CreateNav(f.ctx, &models.FundNavCreate{
		FundID: f.fund.ID, AsOfDate: on, FundAccumulated: d("1000"), SharesAmount: d("10"), ShareValue: d(value),
	})
	require.NoError(t, err)
	return n
}

func TestCreateFund_NormalizesCurrency(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "USD", f.fund.Currency)

	_, err := f.svc.CreateFund(f.ctx, &models.FundCreate{Name: "Bad", Currency: "ABCD"})
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = f.svc.CreateFund(f.ctx, &models.FundCreate{Currency: "EUR"})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestCreateCashMovement_Validation(t *testing.T) {
	f := newFixture(t)
	fundID := f.fund.ID

	tests := []struct {
		name string
		in   models.CashMovementCreate
		want error
	}{
		{"bad type", models.CashMovementCreate{AccountID: f.account.ID, Type: "bonus", Amount: d("1"), Currency: "USD"}, common.ErrValidation},
		{"zero amount", models.CashMovementCreate{AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("0"), Currency: "USD"}, common.ErrValidation},
		{"negative amount", models.CashMovementCreate{AccountID: f.account.ID, Type: models.CashFee, Amount: d("-5"), Currency: "USD"}, common.ErrValidation},
		{"bad currency", models.CashMovementCreate{AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("1"), Currency: "US"}, common.ErrValidation},
		{"fund on withdrawal", models.CashMovementCreate{AccountID: f.account.ID, Type: models.CashWithdrawal, Amount: d("1"), Currency: "USD", FundID: &fundID}, common.ErrValidation},
		{"unknown account", models.CashMovementCreate{AccountID: 999, Type: models.CashDeposit, Amount: d("1"), Currency: "USD"}, common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := f.svc.CreateCashMovement(f.ctx, &in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCreateCashMovement_Plain(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("1000.50"), Currency: "eur",
		EffectiveDate: models.NewDate(2024, 1, 15),
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.50", m.Amount.String())
	assert.Equal(t, "EUR", m.Currency)
	assert.Nil(t, m.FundID)
	require.NotNil(t, m.UserName)
	assert.Equal(t, "Ada Lovelace", *m.UserName)

	got, err := f.svc.GetCashMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.50", got.Amount.String())
	assert.Equal(t, "2024-01-15", got.EffectiveDate.String())
}

func TestCreateCashMovement_DepositSubscribes(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 1, 1), "100")
	f.nav(t, models.NewDate(2024, 3, 1), "125") // after the deposit, ignored

	fundID := f.fund.ID
	m, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("250"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 2, 1), FundID: &fundID,
	})
	require.NoError(t, err)
	require.NotNil(t, m.FundID)
	assert.Equal(t, fundID, *m.FundID)

	sub, err := f.storage.Ledger.ShareMovementForCash(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.ShareSubscription, sub.Type)
	assert.Equal(t, "2.50000000", sub.SharesChange.String())
	assert.Equal(t, "100", sub.SharePrice.String())
	assert.Equal(t, "250", sub.TotalAmount.String())
	assert.Equal(t, "2024-02-01", sub.EffectiveDate.String())
}

func TestCreateCashMovement_DepositWithoutNavRollsBack(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 6, 1), "100")

	fundID := f.fund.ID
	_, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("250"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 2, 1), FundID: &fundID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	list, err := f.svc.ListCashMovements(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "cash movement must not survive a failed subscription")
}

func TestUpdateCashMovement_AddsSubscription(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 1, 1), "50")

	m, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("100"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 2, 1),
	})
	require.NoError(t, err)

	fundID := f.fund.ID
	amount := d("150")
	updated, err := f.svc.UpdateCashMovement(f.ctx, m.ID, &models.CashMovementUpdate{Amount: &amount, FundID: &fundID})
	require.NoError(t, err)
	assert.Equal(t, "150", updated.Amount.String())
	require.NotNil(t, updated.FundID)

	sub, err := f.storage.Ledger.ShareMovementForCash(f.ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "3.00000000", sub.SharesChange.String())

	// same fund again: no second subscription
	_, err = f.svc.UpdateCashMovement(f.ctx, m.ID, &models.CashMovementUpdate{FundID: &fundID})
	require.NoError(t, err)
	shares, err := f.storage.Ledger.ListShareMovements(f.ctx, f.account.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 1)
}

func TestUpdateCashMovement_FundOnFee(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 1, 1), "50")

	m, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashFee, Amount: d("5"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 2, 1),
	})
	require.NoError(t, err)

	fundID := f.fund.ID
	_, err = f.svc.UpdateCashMovement(f.ctx, m.ID, &models.CashMovementUpdate{FundID: &fundID})
	assert.True(t, errors.Is(err, common.ErrValidation))

	got, err := f.svc.GetCashMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CashFee, got.Type)
}

func TestUpdateCashMovement_NotFound(t *testing.T) {
	f := newFixture(t)
	amount := d("1")
	_, err := f.svc.UpdateCashMovement(f.ctx, 42, &models.CashMovementUpdate{Amount: &amount})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestDeleteCashMovement_KeepsSubscription(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 1, 1), "10")

	fundID := f.fund.ID
	m, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("100"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 1, 2), FundID: &fundID,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCashMovement(f.ctx, m.ID))
	assert.True(t, errors.Is(f.svc.DeleteCashMovement(f.ctx, m.ID), common.ErrNotFound))

	shares, err := f.storage.Ledger.ListShareMovements(f.ctx, f.account.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Nil(t, shares[0].CashMovementID)
}

func TestShareMovementCRUD(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateShareMovement(f.ctx, &models.FundShareMovementCreate{
		AccountID: f.account.ID, FundID: 999, Type: models.ShareSubscription,
		SharesChange: d("1"), SharePrice: d("1"), TotalAmount: d("1"),
	})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = f.svc.CreateShareMovement(f.ctx, &models.FundShareMovementCreate{
		AccountID: f.account.ID, FundID: f.fund.ID, Type: "switch",
		SharesChange: d("1"), SharePrice: d("1"), TotalAmount: d("1"),
	})
	assert.True(t, errors.Is(err, common.ErrValidation))

	m, err := f.svc.CreateShareMovement(f.ctx, &models.FundShareMovementCreate{
		AccountID: f.account.ID, FundID: f.fund.ID, Type: models.ShareSubscription,
		SharesChange: d("12.3456789"), SharePrice: d("101.01"), TotalAmount: d("1247.06"),
		EffectiveDate: models.NewDate(2024, 4, 1),
	})
	require.NoError(t, err)

	got, err := f.svc.GetShareMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.3456789", got.SharesChange.String())
	assert.Equal(t, "101.01", got.SharePrice.String())
	assert.Equal(t, "1247.06", got.TotalAmount.String())

	price := d("99")
	updated, err := f.svc.UpdateShareMovement(f.ctx, m.ID, &models.FundShareMovementUpdate{SharePrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "99", updated.SharePrice.String())
	assert.Equal(t, "1247.06", updated.TotalAmount.String(), "total_amount is independent of price")

	require.NoError(t, f.svc.DeleteShareMovement(f.ctx, m.ID))
	_, err = f.svc.GetShareMovement(f.ctx, m.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestShareMovement_CashFromOtherAccount(t *testing.T) {
	f := newFixture(t)
	other, err := f.storage.Ledger.CreateAccount(f.ctx, &models.AccountCreate{UserID: "u1", AccountNumber: "ACC-2"})
	require.NoError(t, err)

	cash, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: other.ID, Type: models.CashDeposit, Amount: d("10"), Currency: "USD",
	})
	require.NoError(t, err)

	cashID := cash.ID
	_, err = f.svc.CreateShareMovement(f.ctx, &models.FundShareMovementCreate{
		AccountID: f.account.ID, FundID: f.fund.ID, CashMovementID: &cashID, Type: models.ShareSubscription,
		SharesChange: d("1"), SharePrice: d("10"), TotalAmount: d("10"),
	})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestNavCRUD(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateNav(f.ctx, &models.FundNavCreate{FundID: 999, AsOfDate: models.NewDate(2024, 1, 1), ShareValue: d("1")})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = f.svc.CreateNav(f.ctx, &models.FundNavCreate{FundID: f.fund.ID, AsOfDate: models.NewDate(2024, 1, 1), ShareValue: d("0")})
	assert.True(t, errors.Is(err, common.ErrValidation))

	n := f.nav(t, models.NewDate(2024, 1, 1), "100.125")
	assert.False(t, n.DeltaPrevious.Valid)

	delta := d("0.05")
	updated, err := f.svc.UpdateNav(f.ctx, n.ID, &models.FundNavUpdate{DeltaPrevious: &delta})
	require.NoError(t, err)
	require.True(t, updated.DeltaPrevious.Valid)
	assert.Equal(t, "0.05", updated.DeltaPrevious.Decimal.String())
	assert.Equal(t, "100.125", updated.ShareValue.String())

	list, err := f.svc.ListNavs(f.ctx, f.fund.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.ListNavs(f.ctx, 999)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, f.svc.DeleteNav(f.ctx, n.ID))
	_, err = f.svc.GetNav(f.ctx, n.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMovementFeeds(t *testing.T) {
	f := newFixture(t)
	f.nav(t, models.NewDate(2024, 1, 1), "10")

	fundID := f.fund.ID
	_, err := f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashDeposit, Amount: d("100"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 1, 5), FundID: &fundID,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateCashMovement(f.ctx, &models.CashMovementCreate{
		AccountID: f.account.ID, Type: models.CashFee, Amount: d("1"), Currency: "USD",
		EffectiveDate: models.NewDate(2024, 2, 1),
	})
	require.NoError(t, err)

	feed, err := f.svc.UserMovements(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "2024-02-01", feed[0].EffectiveDate.String(), "newest first")

	acct, err := f.svc.AccountMovements(f.ctx, f.account.ID)
	require.NoError(t, err)
	assert.Len(t, acct, 3)

	_, err = f.svc.AccountMovements(f.ctx, 999)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = f.svc.UserMovements(f.ctx, "nobody")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	report, err := f.svc.CashShareReport(f.ctx)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "Ada Lovelace", report[0].UserFullName)
	require.NotNil(t, report[0].FundShareMovementID)
	assert.Equal(t, "10.00000000", report[0].SharesChange.String())
	assert.Nil(t, report[1].FundShareMovementID)
}
