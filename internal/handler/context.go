package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

var errNoIdentity = errors.New("no identity in context")

// getUserID pulls the authenticated identity id set by the JWT middleware.
func getUserID(c echo.Context) (string, error) {
	id, ok := c.Get("user_id").(string)
	if !ok || id == "" {
		return "", errNoIdentity
	}
	return id, nil
}

func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
