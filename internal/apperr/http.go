package apperr

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler maps classified errors onto HTTP status codes at the
// system boundary: validation and argument faults are client errors, state
// errors surface as not-found, upstream failures as bad-gateway. Anything
// unclassified becomes a 500. Register it as echo's HTTPErrorHandler.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// let echo's own errors (404 route miss, 405, binding) pass through
	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, echo.Map{"error": he.Message})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"
	if kind, ok := KindOf(err); ok {
		message = err.Error()
		switch kind {
		case KindValidation, KindArgument:
			status = http.StatusBadRequest
		case KindState:
			status = http.StatusNotFound
		case KindUpstream:
			status = http.StatusBadGateway
		}
	} else {
		log.Printf("http: unhandled error: %v", err)
	}

	_ = c.JSON(status, echo.Map{"error": message})
}
