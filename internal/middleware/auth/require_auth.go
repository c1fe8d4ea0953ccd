package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mdemidov/product_api/internal/logging"
	"github.com/mdemidov/product_api/internal/repo"
	"github.com/mdemidov/product_api/internal/tokens"
)

type Middleware struct {
	Repo *repo.GormRepo
}

// RequireAuth resolves the bearer credential to a user. A missing, malformed,
// unknown or revoked token all produce the same 401 body, so the response
// cannot be used to probe which tokens ever existed.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			return unauthenticated(c)
		}

		id, secret, err := tokens.Parse(raw)
		if err != nil {
			return unauthenticated(c)
		}
		token, err := m.Repo.FindAccessToken(ctx, id)
		if err != nil {
			return unauthenticated(c)
		}
		if !tokens.VerifySecret(secret, token.TokenHash) {
			return unauthenticated(c)
		}

		user, err := m.Repo.FindUserByID(ctx, token.UserID)
		if err != nil {
			return unauthenticated(c)
		}

		if err := m.Repo.TouchAccessToken(ctx, token.ID); err != nil {
			logging.FromContext(ctx).Warn("token touch failed", "token_id", token.ID, "error", err)
		}

		setUserContext(c, user, token.ID)
		return next(c)
	}
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthenticated."})
}
