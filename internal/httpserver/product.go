package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/mdemidov/product_api/internal/es"
	"github.com/mdemidov/product_api/internal/logging"
	authmw "github.com/mdemidov/product_api/internal/middleware/auth"
	"github.com/mdemidov/product_api/internal/service"
	"github.com/mdemidov/product_api/internal/transport"
	"github.com/mdemidov/product_api/internal/util"
)

type ProductHTTP struct {
	Svc     *service.ProductService
	ES      *elasticsearch.Client
	ESIndex string
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	category := c.QueryParam("category")

	total, items, err := h.Svc.List(ctx, authmw.CurrentUser(c), category, util.Offset(page, util.PerPage), util.PerPage)
	if err != nil {
		l.Error("list_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	extra := url.Values{}
	if category != "" {
		extra.Set("category", category)
	}
	meta, links := util.Paginate(c.Request().URL.Path, extra, page, total, len(items))

	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"meta":  meta,
		"links": links,
	})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c.Param("id"))
	if err != nil {
		return notFoundJSON(c)
	}

	product, err := h.Svc.Get(ctx, authmw.CurrentUser(c), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("get_failed", "status", 404, "product_id", id)
			return notFoundJSON(c)
		}
		l.Error("get_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_failed", "status", 422, "reason", "invalid body", "error", err)
		return validationJSON(c, "The given data was invalid.", map[string][]string{})
	}

	product, err := h.Svc.Create(ctx, authmw.CurrentUser(c), req)
	if err != nil {
		return h.mapWriteError(c, l, err, "create")
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c.Param("id"))
	if err != nil {
		return notFoundJSON(c)
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_failed", "status", 422, "reason", "invalid body", "error", err)
		return validationJSON(c, "The given data was invalid.", map[string][]string{})
	}

	product, err := h.Svc.Update(ctx, authmw.CurrentUser(c), id, req)
	if err != nil {
		return h.mapWriteError(c, l, err, "update")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c.Param("id"))
	if err != nil {
		return notFoundJSON(c)
	}

	if err := h.Svc.Delete(ctx, authmw.CurrentUser(c), id); err != nil {
		return h.mapWriteError(c, l, err, "delete")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// Search queries the Elasticsearch mirror; the core list/get paths never
// depend on it.
func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	query := c.QueryParam("q")
	if query == "" {
		return validationJSON(c, "The q field is required.", map[string][]string{
			"q": {"The q field is required."},
		})
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}

	total, items, err := es.Search(ctx, h.ES, h.ESIndex, query, util.Offset(page, util.PerPage), util.PerPage)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	extra := url.Values{"q": {query}}
	meta, links := util.Paginate(c.Request().URL.Path, extra, page, total, len(items))

	return c.JSON(http.StatusOK, echo.Map{
		"data":  items,
		"meta":  meta,
		"links": links,
	})
}

func (h *ProductHTTP) mapWriteError(c echo.Context, l *slog.Logger, err error, verb string) error {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		l.Warn(verb+"_failed", "status", 404)
		return notFoundJSON(c)
	case errors.Is(err, service.ErrForbidden):
		l.Warn(verb+"_failed", "status", 403, "reason", "missing permission")
		return c.JSON(http.StatusForbidden, echo.Map{
			"message": "You do not have permission to " + verb + " products.",
		})
	case errors.As(err, &ve):
		l.Warn(verb+"_failed", "status", 422, "reason", "validation")
		return validationJSON(c, ve.Message, ve.Errors)
	default:
		l.Error(verb+"_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot "+verb+" product")
	}
}

func notFoundJSON(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"message": "Product not found."})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
