package middleware // reusable HTTP middleware for the POS API

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	ContextKeyUserID      = "user_id"
	ContextKeyScopes      = "scopes"
	ContextKeyAccessToken = "access_token"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the subject, the granted scopes and the raw token into the
// request context. The raw token is kept because every gateway call is
// made with the caller's own credential, via a per-request session; the
// token is never stored in any shared client.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(ContextKeyUserID, claims["sub"])
			c.Set(ContextKeyScopes, scopesFromClaims(claims))
			c.Set(ContextKeyAccessToken, raw)
			return next(c)
		}
	}
}

// scopesFromClaims extracts granted scopes from either the space-delimited
// "scope" claim (OAuth2 style) or a "scopes" string array.
func scopesFromClaims(claims jwt.MapClaims) []string {
	if s, ok := claims["scope"].(string); ok && s != "" {
		return strings.Fields(s)
	}
	list, ok := claims["scopes"].([]interface{})
	if !ok {
		return nil
	}
	scopes := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// AccessToken returns the raw bearer token stored by JWTAuth, or "" when
// the request was not authenticated.
func AccessToken(c echo.Context) string {
	if s, ok := c.Get(ContextKeyAccessToken).(string); ok {
		return s
	}
	return ""
}

// UserID returns the authenticated subject, or "" when absent.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ContextKeyUserID).(string); ok {
		return s
	}
	return ""
}
