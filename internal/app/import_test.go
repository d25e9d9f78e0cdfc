package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
users:
  - auth_subject: auth0|ada
    email: ada@example.com
    full_name: Ada Lovelace
    status: active
funds:
  - name: Growth
    currency: usd
accounts:
  - user: auth0|ada
    account_number: ACC-1
    commission_rate: "0.20"
navs:
  - fund: Growth
    as_of_date: 2024-01-01
    fund_accumulated: "100000"
    shares_amount: "1000"
    share_value: "100"
  - fund: Growth
    as_of_date: 2024-02-01
    fund_accumulated: "120000"
    shares_amount: "1000"
    share_value: "120"
    delta_previous: "0.2"
cash_movements:
  - account: ACC-1
    type: deposit
    amount: "1000"
    currency: USD
    effective_date: 2024-01-10
    fund: Growth
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportLedgerFile(t *testing.T) {
	a, storage := newTestApp(t)
	ctx := context.Background()

	good := writeFile(t, "seed.yaml", seedYAML)
	res, err := a.ImportLedgerFile(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Funds)
	assert.Equal(t, 1, res.Accounts)
	assert.Equal(t, 2, res.Navs)
	assert.Equal(t, 1, res.CashMovements)
	assert.Equal(t, 1, res.ShareMovements)

	summaries, err := a.SummaryService.GetAccountSummaries(ctx, models.AllAccounts)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	s := summaries[0]
	// 10 shares at 120 = 1200; gains 200 at 20% = 40
	assert.Equal(t, "40", s.TotalFees.String())
	assert.Equal(t, "960", s.NetInvested.String())
	require.NotNil(t, s.UserFullName)
	assert.Equal(t, "Ada Lovelace", *s.UserFullName)

	again, err := a.ImportLedgerFile(ctx, good)
	require.NoError(t, err)
	assert.True(t, again.AlreadyApplied)

	last, err := storage.Internal.GetSystemKV(ctx, lastImportKey)
	require.NoError(t, err)
	assert.Contains(t, last, good)
}

func TestImportLedgerFile_Malformed(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	_, err := a.ImportLedgerFile(ctx, writeFile(t, "bad.yaml", "users: [\n"))
	assert.Error(t, err)

	_, err = a.ImportLedgerFile(ctx, writeFile(t, "dec.yaml", `
funds:
  - name: Growth
    currency: USD
navs:
  - fund: Growth
    as_of_date: 2024-01-01
    fund_accumulated: "1e"
    shares_amount: "1"
    share_value: "1"
`))
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = a.ImportLedgerFile(ctx, writeFile(t, "shares.yaml", `
users:
  - auth_subject: s1
    email: s1@example.com
accounts:
  - user: s1
    account_number: ACC-9
share_movements:
  - account: ACC-9
    fund: Growth
    type: redemption
    shares_change: "0"
    share_price: "120"
`))
	assert.True(t, errors.Is(err, common.ErrValidation), "zero shares: %v", err)

	_, err = a.ImportLedgerFile(ctx, writeFile(t, "nofund.yaml", `
share_movements:
  - account: ACC-9
    fund: Bonds
    type: subscription
    shares_change: "1"
    share_price: "1"
`))
	assert.True(t, errors.Is(err, common.ErrNotFound), "unknown fund: %v", err)

	_, err = a.ImportLedgerFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
