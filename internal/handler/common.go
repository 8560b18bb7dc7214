package handler // handler defines http handlers

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user's UUID from the echo context.
// The JWT middleware stores the token subject under "user_id"; anything
// that is not a well-formed UUID is rejected.
func getUserID(c echo.Context) (string, error) {
	v := c.Get("user_id")
	s, ok := v.(string)
	if !ok || uuid.Validate(s) != nil {
		return "", errors.New("invalid user_id in context")
	}
	return s, nil
}
