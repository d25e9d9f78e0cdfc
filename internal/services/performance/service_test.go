package performance

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	testcommon "github.com/bobmcallan/fundboard/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *testcommon.TestStorage) {
	t.Helper()
	storage := testcommon.NewTestStorage(t, true)
	svc := NewService(storage, common.NewSilentLogger(), common.PerformanceConfig{DefaultLimit: 12, MaxLimit: 365})
	return svc, storage
}

func addNav(t *testing.T, storage *testcommon.TestStorage, fundID int64, on models.Date, value string) {
	t.Helper()
	_, err := storage.Ledger.CreateNav(context.Background(), &models.FundNavCreate{
		FundID:          fundID,
		AsOfDate:        on,
		FundAccumulated: models.RequireDecimal("1000"),
		SharesAmount:    models.RequireDecimal("10"),
		ShareValue:      models.RequireDecimal(value),
	})
	require.NoError(t, err)
}

func TestGetFundPerformance_Truncates(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	fund, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Growth", Currency: "USD"})
	require.NoError(t, err)
	addNav(t, storage, fund.ID, models.NewDate(2024, 3, 1), "103")
	addNav(t, storage, fund.ID, models.NewDate(2024, 1, 1), "101")
	addNav(t, storage, fund.ID, models.NewDate(2024, 2, 1), "102")

	perf, err := svc.GetFundPerformance(ctx, fund.ID, 2)
	require.NoError(t, err)
	require.Len(t, perf.Navs, 2)
	assert.Equal(t, "2024-02-01", perf.Navs[0].AsOfDate.String())
	assert.Equal(t, "2024-03-01", perf.Navs[1].AsOfDate.String())
	require.True(t, perf.LatestShareValue.Valid)
	assert.Equal(t, "103", perf.LatestShareValue.Decimal.String())
	assert.Equal(t, "Growth", perf.FundName)
}

func TestGetFundPerformance_NoNavs(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	fund, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Empty", Currency: "USD"})
	require.NoError(t, err)

	perf, err := svc.GetFundPerformance(ctx, fund.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, perf.Navs)
	assert.Empty(t, perf.Navs)
	assert.False(t, perf.LatestShareValue.Valid)
}

func TestGetFundPerformance_UnknownFund(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetFundPerformance(context.Background(), 999, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetFundPerformance_LimitBounds(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()
	fund, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Growth", Currency: "USD"})
	require.NoError(t, err)

	for _, limit := range []int{-1, 366} {
		_, err := svc.GetFundPerformance(ctx, fund.ID, limit)
		assert.True(t, errors.Is(err, common.ErrValidation), "limit %d", limit)
	}
	for _, limit := range []int{1, 365} {
		_, err := svc.GetFundPerformance(ctx, fund.ID, limit)
		assert.NoError(t, err, "limit %d", limit)
	}
}

func TestListFundPerformance(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	zeta, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Zeta", Currency: "USD"})
	require.NoError(t, err)
	alpha, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Alpha", Currency: "EUR"})
	require.NoError(t, err)

	addNav(t, storage, zeta.ID, models.NewDate(2024, 1, 1), "10")
	addNav(t, storage, zeta.ID, models.NewDate(2024, 2, 1), "11")
	addNav(t, storage, zeta.ID, models.NewDate(2024, 3, 1), "12")

	got, err := svc.ListFundPerformance(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, zeta.ID, got[0].FundID, "ordered by fund id")
	require.Len(t, got[0].Navs, 2)
	assert.Equal(t, "11", got[0].Navs[0].ShareValue.String())
	assert.Equal(t, "12", got[0].LatestShareValue.Decimal.String())

	assert.Equal(t, alpha.ID, got[1].FundID)
	assert.Empty(t, got[1].Navs)
	assert.False(t, got[1].LatestShareValue.Valid)
}

func TestGetLatestNavs(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	fund, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Growth", Currency: "USD"})
	require.NoError(t, err)
	empty, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Empty", Currency: "USD"})
	require.NoError(t, err)

	addNav(t, storage, fund.ID, models.NewDate(2024, 1, 1), "100")
	addNav(t, storage, fund.ID, models.NewDate(2024, 2, 1), "110")

	got, err := svc.GetLatestNavs(ctx)
	require.NoError(t, err)
	require.Contains(t, got, fund.ID)
	assert.Equal(t, "110", got[fund.ID].ShareValue.String())
	assert.NotContains(t, got, empty.ID)
}

func TestRenderChart(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	fund, err := storage.Ledger.CreateFund(ctx, &models.FundCreate{Name: "Growth", Currency: "USD"})
	require.NoError(t, err)
	addNav(t, storage, fund.ID, models.NewDate(2024, 1, 1), "100")

	_, err = svc.RenderChart(ctx, fund.ID, 0)
	assert.True(t, errors.Is(err, common.ErrValidation), "one point cannot be charted")

	addNav(t, storage, fund.ID, models.NewDate(2024, 2, 1), "110.5")

	png, err := svc.RenderChart(ctx, fund.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
