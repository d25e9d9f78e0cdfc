package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fundboard/internal/models"
)

func TestSignupAndMe(t *testing.T) {
	env := NewEnv(t)
	tok := env.Token("ada")

	resp := env.Do(http.MethodGet, "/api/users/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.Do(http.MethodPost, "/api/users/signup", tok, map[string]string{"full_name": "Ada Lovelace"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[models.User](t, resp)
	assert.Equal(t, "ada", created.AuthSubject)
	assert.Equal(t, models.UserStatusActive, created.Status)

	resp = env.Do(http.MethodGet, "/api/users/me", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeJSON[models.User](t, resp)
	assert.Equal(t, created.UserID, me.UserID)
	assert.Equal(t, "Ada Lovelace", me.FullName)

	resp = env.Do(http.MethodPost, "/api/users/signup", tok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	env := NewEnv(t)
	_, adminTok := env.SeedAdmin("root-admin")

	resp := env.Do(http.MethodPost, "/api/users/signup", env.Token("bob"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := map[string]interface{}{
		"auth_subject": "carol",
		"email":        "carol@example.com",
		"full_name":    "Carol",
	}
	resp = env.Do(http.MethodPost, "/api/users", env.Token("bob"), body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.Do(http.MethodPost, "/api/users", adminTok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.UserStatusInvited, decodeJSON[models.User](t, resp).Status)

	// Invited users cannot use the API until activated.
	resp = env.Do(http.MethodGet, "/api/users/me", env.Token("carol"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.Do(http.MethodPost, "/api/users", adminTok, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.Do(http.MethodGet, "/api/users", adminTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeJSON[[]models.User](t, resp), 3)
}
