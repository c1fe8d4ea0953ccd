package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mdemidov/product_api/internal/logging"
	authmw "github.com/mdemidov/product_api/internal/middleware/auth"
	"github.com/mdemidov/product_api/internal/service"
	"github.com/mdemidov/product_api/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 422, "reason", "invalid body", "error", err)
		return validationJSON(c, "The given data was invalid.", map[string][]string{})
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			l.Warn("register_failed", "status", 422, "reason", "validation")
			return validationJSON(c, ve.Message, ve.Errors)
		}
		l.Error("register_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register user")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "User registered successfully",
		"user":         res.User,
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 422, "reason", "invalid body", "error", err)
		return validationJSON(c, "The given data was invalid.", map[string][]string{})
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			l.Warn("login_failed", "status", 422, "reason", "validation")
			return validationJSON(c, ve.Message, ve.Errors)
		case errors.Is(err, service.ErrInvalidCredentials):
			// unknown email and wrong password answer identically
			l.Warn("login_failed", "status", 422, "reason", "invalid credentials")
			return validationJSON(c, "The provided credentials are incorrect.", map[string][]string{
				"email": {"The provided credentials are incorrect."},
			})
		case errors.Is(err, service.ErrAccountDisabled):
			l.Warn("login_failed", "status", 403, "reason", "account disabled")
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Your account has been deactivated."})
		default:
			l.Error("login_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot login")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Login successful",
		"user":         res.User,
		"access_token": res.AccessToken,
		"token_type":   "Bearer",
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, authmw.CurrentTokenID(c)); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot logout")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user": authmw.CurrentUser(c)})
}

func validationJSON(c echo.Context, message string, errs map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"message": message,
		"errors":  errs,
	})
}
