package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func handle(err error) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	HTTPErrorHandler(err, c)
	return rec
}

func TestHTTPErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", New(KindValidation, "email required"), http.StatusBadRequest},
		{"argument", New(KindArgument, "cached amount is not a number"), http.StatusBadRequest},
		{"state", New(KindState, "amount not found for transaction"), http.StatusNotFound},
		{"upstream", New(KindUpstream, "gateway returned 503"), http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped in plain error", fmt.Errorf("confirm: %w", New(KindState, "profile missing")), http.StatusNotFound},
		{"echo error passthrough", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := handle(tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestHTTPErrorHandlerHidesUnclassifiedDetail(t *testing.T) {
	rec := handle(errors.New("dsn: user:password@tcp"))
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestKindOf(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)

	kind, ok := KindOf(Wrap(KindUpstream, errors.New("refused"), "gateway request failed"))
	assert.True(t, ok)
	assert.Equal(t, KindUpstream, kind)

	// classification survives further wrapping
	err := fmt.Errorf("outer: %w", New(KindValidation, "bad input"))
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(err, KindState))
}
