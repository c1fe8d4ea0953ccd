package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/mdemidov/product_api/internal/models"
)

const (
	ctxUserKey    = "user"
	ctxTokenIDKey = "token_id"
)

func setUserContext(c echo.Context, u *models.User, tokenID uint) {
	c.Set(ctxUserKey, u)
	c.Set(ctxTokenIDKey, tokenID)
}

// CurrentUser returns the authenticated user, nil outside RequireAuth.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(ctxUserKey).(*models.User)
	return u
}

// CurrentTokenID identifies the token the request authenticated with.
func CurrentTokenID(c echo.Context) uint {
	id, _ := c.Get(ctxTokenIDKey).(uint)
	return id
}
