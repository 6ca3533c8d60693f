package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailmailtreasures/marketplace/pkg/tokens"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "sam",
		"email":    "sam@example.com",
		"password": "hunter22",
	})
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "sam", resp.Username)
	assert.Equal(t, "sam@example.com", resp.Email)

	// The issued token carries the user id in its payload.
	payload, err := tokens.DecodePayload(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, payload.ID)
	assert.NotZero(t, payload.Exp)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "sam",
	})
	err := env.Auth.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestRegister_DuplicateUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser("sam")

	_, c := env.doJSONRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "sam",
		"email":    "other@example.com",
		"password": "hunter22",
	})
	err := env.Auth.Register(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user := env.createUser("sam")

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "sam",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.createUser("sam")

	_, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "sam",
		"password": "wrong",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "ghost",
		"password": "password",
	})
	err := env.Auth.Login(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpErrorCode(t, err))
}
