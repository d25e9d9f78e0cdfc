package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundboard/internal/app"
	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/bobmcallan/fundboard/internal/models"
	"github.com/bobmcallan/fundboard/internal/server"
	"github.com/bobmcallan/fundboard/internal/storage"
	tcommon "github.com/bobmcallan/fundboard/tests/common"
)

// Env is a running server backed by the SurrealDB container and a
// temporary SQLite ledger.
type Env struct {
	t      *testing.T
	Config *common.Config
	App    *app.App
	Server *httptest.Server
}

// NewEnv starts a server for one test. Skipped unless FUNDBOARD_TEST_DOCKER
// is true.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Server.RateLimit.Enabled = false
	cfg.Storage.Internal.Address = sc.Address()
	cfg.Storage.Internal.Namespace = "fundboard_api"
	cfg.Storage.Internal.Database = fmt.Sprintf("t_%s_%d",
		strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000)
	cfg.Storage.Ledger.Path = filepath.Join(t.TempDir(), "ledger.db")

	logger := common.NewSilentLogger()
	mgr, err := storage.NewManager(context.Background(), logger, cfg)
	require.NoError(t, err)

	a := app.NewAppWithStorage(cfg, logger, mgr)
	srv := httptest.NewServer(server.NewServer(a).Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})

	return &Env{t: t, Config: cfg, App: a, Server: srv}
}

// Token mints a bearer token for subject.
func (e *Env) Token(subject string) string {
	e.t.Helper()
	tok, err := server.SignToken(e.Config.Auth, subject, subject+"@example.com", subject)
	require.NoError(e.t, err)
	return tok
}

// SeedAdmin creates an active admin directly through the user service.
func (e *Env) SeedAdmin(subject string) (*models.User, string) {
	e.t.Helper()
	u, err := e.App.UserService.CreateUser(context.Background(), &models.UserCreate{
		AuthSubject: subject,
		Email:       subject + "@example.com",
		FullName:    "Admin " + subject,
		IsAdmin:     true,
		Status:      models.UserStatusActive,
	})
	require.NoError(e.t, err)
	return u, e.Token(subject)
}

// Do sends a request with an optional bearer token and JSON body.
func (e *Env) Do(method, path, token string, body interface{}) *http.Response {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.Server.URL+path, r)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.Server.Client().Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// decodeJSON reads a response body into T.
func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}
