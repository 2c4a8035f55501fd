package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cases below exercise request validation, which runs before any
// repository access; a zero-value handler is enough.

func TestRegisterValidation(t *testing.T) {
	h := &AuthHandler{}
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "malformed json",
			body: `{"username":`,
			want: "invalid body",
		},
		{
			name: "missing fields",
			body: `{"username":"alice"}`,
			want: "username/email/password required",
		},
		{
			name: "blank username",
			body: `{"username":"   ","email":"a@example.com","password":"Passw0rd","password2":"Passw0rd"}`,
			want: "username/email/password required",
		},
		{
			name: "password mismatch",
			body: `{"username":"alice","email":"a@example.com","password":"Passw0rd","password2":"Passw0rd!"}`,
			want: "passwords don't match",
		},
		{
			name: "weak password",
			body: `{"username":"alice","email":"a@example.com","password":"password","password2":"password"}`,
			want: "password must be at least 8 characters long and contain at least one digit and one uppercase letter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/v1/auth/register", tt.body)
			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestLoginValidation(t *testing.T) {
	h := &AuthHandler{}

	c, rec := newJSONContext(http.MethodPost, "/v1/auth/login", `{"email":"a@example.com"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newJSONContext(http.MethodPost, "/v1/auth/login", `{"password":"Passw0rd"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRequiresToken(t *testing.T) {
	h := &AuthHandler{}

	for _, body := range []string{`{}`, `{"refresh_token":"   "}`} {
		c, rec := newJSONContext(http.MethodPost, "/v1/auth/refresh", body)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		c, rec = newJSONContext(http.MethodPost, "/v1/auth/refresh-access", body)
		require.NoError(t, h.RefreshAccess(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestLogoutWithoutTokenOrIdentity(t *testing.T) {
	h := &AuthHandler{}
	c, rec := newJSONContext(http.MethodPost, "/v1/auth/logout", `{}`)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "provide refresh_token or Authorization header")
}

func TestProfileRequiresIdentity(t *testing.T) {
	h := &AuthHandler{}
	c, rec := newJSONContext(http.MethodGet, "/v1/auth/profile", "")
	require.NoError(t, h.Profile(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
