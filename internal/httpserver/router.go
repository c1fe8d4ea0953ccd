package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/mdemidov/product_api/internal/middleware/auth"
)

type Deps struct {
	Auth     *AuthHTTP
	Products *ProductHTTP
	AuthMW   *authmw.Middleware
}

// RegisterRoutes wires the API surface onto e. Everything under /api/v1
// except register and login requires a bearer token.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := e.Group("/api/v1")
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)

	private := api.Group("", d.AuthMW.RequireAuth)
	private.POST("/logout", d.Auth.Logout)
	private.GET("/me", d.Auth.Me)

	private.GET("/products", d.Products.List)
	private.GET("/products/search", d.Products.Search)
	private.POST("/products", d.Products.Create)
	private.GET("/products/:id", d.Products.Get)
	private.PUT("/products/:id", d.Products.Update)
	private.DELETE("/products/:id", d.Products.Delete)
}
