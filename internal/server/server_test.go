package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	testcommon "github.com/bobmcallan/fundboard/tests/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	cfg     *common.Config
	store   *testcommon.TestStorage
	handler http.Handler
}

func newTestEnv(t *testing.T, configure ...func(*common.Config)) *testEnv {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Server.RateLimit.Enabled = false
	for _, fn := range configure {
		fn(cfg)
	}
	store := testcommon.NewTestStorage(t, true)
	a := app.NewAppWithStorage(cfg, common.NewSilentLogger(), store)
	return &testEnv{cfg: cfg, store: store, handler: NewServer(a).Handler()}
}

func (e *testEnv) token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := SignToken(e.cfg.Auth, subject, subject+"@example.com", "Signed "+subject)
	require.NoError(t, err)
	return tok
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

// do runs one request through the full middleware stack.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// seedFund registers a fund with one NAV per share value, a month apart
// starting January 2024.
func (e *testEnv) seedFund(t *testing.T, name string, values ...string) *models.Fund {
	t.Helper()
	ctx := context.Background()
	fund, err := e.store.Ledger.CreateFund(ctx, &models.FundCreate{Name: name, Currency: "USD"})
	require.NoError(t, err)
	for i, v := range values {
		_, err := e.store.Ledger.CreateNav(ctx, &models.FundNavCreate{
			FundID:          fund.ID,
			AsOfDate:        models.NewDate(2024, time.Month(1+i), 1),
			FundAccumulated: models.RequireDecimal("100000"),
			SharesAmount:    models.RequireDecimal("1000"),
			ShareValue:      models.RequireDecimal(v),
		})
		require.NoError(t, err)
	}
	return fund
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	rec = env.do(t, http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/version", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, common.CurrentBuild().Version, body["version"])
	assert.Contains(t, body, "commit")
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.ShutdownTimeout = "2s"
	a := app.NewAppWithStorage(cfg, common.NewSilentLogger(), testcommon.NewTestStorage(t, true))
	srv := NewServer(a)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRun_BadAddress(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Server.Host = "256.0.0.1"
	a := app.NewAppWithStorage(cfg, common.NewSilentLogger(), testcommon.NewTestStorage(t, true))

	assert.Error(t, NewServer(a).Run(context.Background()))
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	admin := env.store.Internal.AddUser("u-admin", "admin-sub", "Admin", true)
	tok := env.token(t, admin.AuthSubject)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/users/x/y/z", tok, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/movements/other/1", tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/movements/cash/abc", tok, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/funds/0/performance", tok, nil).Code)
}
