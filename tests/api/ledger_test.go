package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundboard/internal/models"
)

// TestDepositToSummary drives a deposit through the API and reads it back
// as a valued account.
func TestDepositToSummary(t *testing.T) {
	env := NewEnv(t)
	_, adminTok := env.SeedAdmin("root-admin")

	userTok := env.Token("ada")
	resp := env.Do(http.MethodPost, "/api/users/signup", userTok, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	ada := decodeJSON[models.User](t, resp)

	resp = env.Do(http.MethodPost, "/api/funds", adminTok, map[string]string{"name": "Growth", "currency": "USD"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	fund := decodeJSON[models.Fund](t, resp)

	for _, nav := range []struct{ date, value string }{{"2024-01-01", "100"}, {"2024-02-01", "120"}} {
		resp = env.Do(http.MethodPost, "/api/navs", adminTok, map[string]interface{}{
			"fund_id":          fund.ID,
			"as_of_date":       nav.date,
			"fund_accumulated": "100000",
			"shares_amount":    "1000",
			"share_value":      nav.value,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = env.Do(http.MethodPost, fmt.Sprintf("/api/users/%s/accounts", ada.UserID), adminTok,
		map[string]interface{}{"account_number": "ACC-1", "commission_rate": "0.2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	account := decodeJSON[models.Account](t, resp)

	resp = env.Do(http.MethodPost, "/api/movements/cash", adminTok, map[string]interface{}{
		"account_id":     account.ID,
		"type":           "deposit",
		"amount":         "1000",
		"currency":       "USD",
		"effective_date": "2024-01-10",
		"fund_id":        fund.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.Do(http.MethodGet, "/api/accounts/me", userTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summaries := decodeJSON[[]models.AccountSummary](t, resp)
	require.Len(t, summaries, 1)
	s := summaries[0]
	require.NotNil(t, s.UserFullName)
	assert.Equal(t, "ada", *s.UserFullName)
	assert.True(t, decimal.RequireFromString("40").Equal(s.TotalFees))
	assert.True(t, decimal.RequireFromString("960").Equal(s.NetInvested))
	require.Len(t, s.Positions, 1)
	assert.True(t, decimal.RequireFromString("1200").Equal(s.Positions[0].MarketValue.Decimal))

	resp = env.Do(http.MethodGet, fmt.Sprintf("/api/movements/user/%s", ada.UserID), userTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeJSON[[]models.UserMovement](t, resp), 2)
}
