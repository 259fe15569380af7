package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPermit(t *testing.T, owned []string, permitted ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if owned != nil {
		c.Set(ContextKeyScopes, owned)
	}

	mw := PermitScopes("https://api.example.com", permitted...)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestPermitScopes(t *testing.T) {
	cases := []struct {
		name   string
		owned  []string
		status int
	}{
		{"plain variant", []string{"https://api.example.com/pos"}, http.StatusOK},
		{"auth variant", []string{"https://api.example.com/auth/pos"}, http.StatusOK},
		{"one of many owned", []string{"other", "https://api.example.com/pos"}, http.StatusOK},
		{"unqualified scope", []string{"pos"}, http.StatusForbidden},
		{"wrong resource server", []string{"https://other.example.com/pos"}, http.StatusForbidden},
		{"no scopes", nil, http.StatusForbidden},
		{"empty scopes", []string{}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := runPermit(t, tc.owned, "pos")
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestPermitScopesMultiplePermitted(t *testing.T) {
	rec := runPermit(t, []string{"https://api.example.com/transactions"}, "pos", "transactions")
	assert.Equal(t, http.StatusOK, rec.Code)
}
