package middleware

// identity.go defines helpers shared across middleware files: extracting
// the numeric user id that JWTAuth stored in the context, and a string
// form of the caller identity for rate-limit keys.

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDFromContext converts the context's user_id (stored by JWTAuth
// as whatever type the JWT decoder produced, usually float64) into a
// uint64.
func userIDFromContext(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentUserID returns a string identity for building rate-limit keys.
// Unauthenticated callers are bucketed together as "anon".
func currentUserID(c echo.Context) string {
	if id, err := userIDFromContext(c); err == nil {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
