package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PermitScopes returns a middleware that rejects requests whose token
// carries none of the permitted scopes. Scopes are matched with the
// resource server identifier prefixed, in both the plain and the /auth/
// variants, so tokens issued under either convention are accepted.
func PermitScopes(resourceServerID string, permitted ...string) echo.MiddlewareFunc {
	qualified := make([]string, 0, len(permitted)*2)
	for _, scope := range permitted {
		qualified = append(qualified,
			resourceServerID+"/"+scope,
			resourceServerID+"/auth/"+scope,
		)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owned, _ := c.Get(ContextKeyScopes).([]string)
			if !anyScopePermitted(owned, qualified) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// anyScopePermitted reports whether any owned scope is in the permitted
// list.
func anyScopePermitted(owned, permitted []string) bool {
	for _, p := range permitted {
		for _, o := range owned {
			if o == p {
				return true
			}
		}
	}
	return false
}
