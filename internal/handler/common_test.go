package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/locker-reservation/internal/model"
)

// newJSONContext builds an echo context carrying a JSON body, the way
// requests arrive after routing.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    uint64
		wantErr bool
	}{
		{name: "uint64", value: uint64(7), want: 7},
		{name: "int", value: 7, want: 7},
		{name: "int64", value: int64(7), want: 7},
		{name: "float64 jwt claim", value: float64(7), want: 7},
		{name: "numeric string", value: "7", want: 7},
		{name: "junk string", value: "abc", wantErr: true},
		{name: "missing", value: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newJSONContext(http.MethodGet, "/", "")
			if tt.value != nil {
				c.Set("user_id", tt.value)
			}
			got, err := getUserID(c)
			if tt.wantErr {
				require.ErrorIs(t, err, errNoIdentity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetRole(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/", "")
	assert.Equal(t, model.Role(""), getRole(c))

	c.Set("role", "admin")
	assert.Equal(t, model.RoleAdmin, getRole(c))

	c.Set("role", 42) // non-string claim falls back to the empty role
	assert.Equal(t, model.Role(""), getRole(c))
}

func TestParseID(t *testing.T) {
	c, _ := newJSONContext(http.MethodGet, "/", "")
	c.SetParamNames("id")

	c.SetParamValues("12")
	id, err := parseID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(bad)
		_, err := parseID(c, "id")
		assert.Errorf(t, err, "value %q", bad)
	}
}

func TestHealth(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/healthz", "")
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
