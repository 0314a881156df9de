package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := setupTest(t)

	t.Run("creates a user", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":         "alice",
			"email":            "alice@example.com",
			"password":         "Test@1234",
			"can_be_contacted": true,
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var user struct {
			ID              uint   `json:"id"`
			Username        string `json:"username"`
			CanBeContacted  bool   `json:"can_be_contacted"`
			CanDataBeShared bool   `json:"can_data_be_shared"`
		}
		decodeJSON(t, rec, &user)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.CanBeContacted)
		assert.False(t, user.CanDataBeShared)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username": "alice",
			"email":    "alice2@example.com",
			"password": "Test@1234",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apierr.CodeConflict, errorCode(t, rec))
	})

	t.Run("rejects underage registration", func(t *testing.T) {
		birthDate := time.Now().AddDate(-14, 0, 0).Format("2006-01-02")

		rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":   "kid",
			"email":      "kid@example.com",
			"password":   "Test@1234",
			"birth_date": birthDate,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body errorBody
		decodeJSON(t, rec, &body)
		assert.Equal(t, apierr.CodeValidationFailure, body.Error.Code)
		assert.Equal(t, "birth_date", body.Error.Field)
	})

	t.Run("accepts a fifteenth birthday today", func(t *testing.T) {
		birthDate := time.Now().AddDate(-15, 0, 0).Format("2006-01-02")

		rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":   "teen",
			"email":      "teen@example.com",
			"password":   "Test@1234",
			"birth_date": birthDate,
		})

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("rejects a malformed birth date", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
			"username":   "nodate",
			"email":      "nodate@example.com",
			"password":   "Test@1234",
			"birth_date": "15/03/1990",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierr.CodeValidationFailure, errorCode(t, rec))
	})
}

func TestLogin(t *testing.T) {
	r := setupTest(t)
	registerAndLogin(t, r, "alice")

	t.Run("returns a token pair", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
			"username": "alice",
			"password": "Test@1234",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var pair auth.TokenPair
		decodeJSON(t, rec, &pair)
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
			"username": "alice",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rec))
	})

	t.Run("rejects an unknown username", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
			"username": "nobody",
			"password": "Test@1234",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rec))
	})
}

func TestRefreshToken(t *testing.T) {
	r := setupTest(t)
	registerAndLogin(t, r, "alice")

	rec := doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": "alice",
		"password": "Test@1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair auth.TokenPair
	decodeJSON(t, rec, &pair)

	t.Run("exchanges a refresh token for a new pair", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/token/refresh", "", gin.H{
			"refresh": pair.Refresh,
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var refreshed auth.TokenPair
		decodeJSON(t, rec, &refreshed)
		assert.NotEmpty(t, refreshed.Access)
		assert.NotEmpty(t, refreshed.Refresh)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/token/refresh", "", gin.H{
			"refresh": pair.Access,
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apierr.CodeUnauthenticated, errorCode(t, rec))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/token/refresh", "", gin.H{
			"refresh": "not-a-token",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthenticationRequired(t *testing.T) {
	r := setupTest(t)
	_, token := registerAndLogin(t, r, "alice")
	project := createProject(t, r, token, "Alpha")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/projects"},
		{http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID)},
		{http.MethodGet, fmt.Sprintf("/api/projects/%d/issues", project.ID)},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := doRequest(t, r, p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, apierr.CodeUnauthenticated, errorCode(t, rec))
		})
	}

	t.Run("rejects a refresh token on a protected route", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
			"username": "alice",
			"password": "Test@1234",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var pair auth.TokenPair
		decodeJSON(t, rec, &pair)

		denied := doRequest(t, r, http.MethodGet, "/api/projects", pair.Refresh, nil)
		assert.Equal(t, http.StatusUnauthorized, denied.Code)
	})
}
