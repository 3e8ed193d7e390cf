package server

import (
	"net/http"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		User models.User `json:"user"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, "alice", created.User.Username)
	assert.NotZero(t, created.User.ID)

	// Same username again is a conflict.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		User   models.User `json:"user"`
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	decodeBody(t, resp, &login)
	assert.NotEmpty(t, login.Tokens.AccessToken)
	assert.NotEmpty(t, login.Tokens.RefreshToken)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "WrongPass1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshRotation(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "alice")

	refresh, err := srv.tokens.GenerateRefreshToken(user.ID)
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rotated struct {
		Tokens struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"tokens"`
	}
	decodeBody(t, resp, &rotated)
	assert.NotEmpty(t, rotated.Tokens.AccessToken)
	assert.NotEqual(t, refresh, rotated.Tokens.RefreshToken)

	// The consumed refresh token is now revoked.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": refresh,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "alice")
	token := accessToken(t, srv, user.ID)

	resp := doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The same token no longer authenticates.
	resp = doJSON(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresAuth(t *testing.T) {
	_, app := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateMyProfile(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "alice")
	token := accessToken(t, srv, user.ID)

	resp := doJSON(t, app, http.MethodPut, "/api/auth/me", token, map[string]interface{}{
		"bio":        "gopher",
		"is_private": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	decodeBody(t, resp, &updated)
	assert.Equal(t, "gopher", updated.Bio)
	assert.True(t, updated.IsPrivate)
	assert.Equal(t, "alice", updated.Username, "username is not updatable here")
}

func TestChangePasswordEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "alice")
	token := accessToken(t, srv, user.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"current_password": "WrongPass1",
		"new_password":     "An0therSecret",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"current_password": testPassword,
		"new_password":     "An0therSecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works, the new one does.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "An0therSecret",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeactivateAccount(t *testing.T) {
	srv, app := newTestServer(t)
	user := createUser(t, srv, "alice")
	token := accessToken(t, srv, user.ID)

	resp := doJSON(t, app, http.MethodPost, "/api/auth/deactivate", token, map[string]string{
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A deactivated account cannot log back in.
	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
