package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/locker-reservation/internal/utils"
)

const testSecret = "middleware-test-secret"

// okHandler records the identity the middleware left in the context.
func okHandler(gotUserID *interface{}, gotRole *interface{}) echo.HandlerFunc {
	return func(c echo.Context) error {
		if gotUserID != nil {
			*gotUserID = c.Get("user_id")
		}
		if gotRole != nil {
			*gotRole = c.Get("role")
		}
		return c.NoContent(http.StatusOK)
	}
}

func runJWT(t *testing.T, authHeader string, gotUserID, gotRole *interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := JWTAuth(testSecret)(okHandler(gotUserID, gotRole))(c)
	require.NoError(t, err)
	return rec
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := runJWT(t, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec := runJWT(t, "Bearer not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, "user", 15)
	require.NoError(t, err)

	rec := runJWT(t, "Bearer "+at.Token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "admin", 15)
	require.NoError(t, err)

	var userID, role interface{}
	rec := runJWT(t, "Bearer "+at.Token, &userID, &role)

	assert.Equal(t, http.StatusOK, rec.Code)
	// JWT numeric claims decode as float64.
	assert.Equal(t, float64(7), userID)
	assert.Equal(t, "admin", role)
}
