package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mdemidov/product_api/internal/config"
	"github.com/mdemidov/product_api/internal/hash"
	"github.com/mdemidov/product_api/internal/httpserver"
	authmw "github.com/mdemidov/product_api/internal/middleware/auth"
	"github.com/mdemidov/product_api/internal/models"
	"github.com/mdemidov/product_api/internal/mykafka"
	"github.com/mdemidov/product_api/internal/repo"
	"github.com/mdemidov/product_api/internal/seed"
	"github.com/mdemidov/product_api/internal/service"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// the pool must stay on a single connection or each connection gets its
	// own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.AutoMigrate(db))
	require.NoError(t, seed.RBAC(t.Context(), db))

	r := &repo.GormRepo{DB: db}
	prod := &mykafka.Producer{}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	httpserver.RegisterRoutes(e, httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:            r,
			Producer:        prod,
			DefaultRoleSlug: config.DefaultRoleSlug,
		}},
		Products: &httpserver.ProductHTTP{
			Svc: &service.ProductService{Repo: r, Producer: prod},
		},
		AuthMW: &authmw.Middleware{Repo: r},
	})

	return &testEnv{T: t, E: e, DB: db}
}

func (env *testEnv) doJSON(method, path, token string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// createUser inserts a user with the given role directly and returns it.
func (env *testEnv) createUser(email, role string) *models.User {
	env.T.Helper()

	pw, err := hash.HashPassword("test_password")
	require.NoError(env.T, err)

	u := &models.User{Name: "Test User", Email: email, PasswordHash: pw, IsActive: true}
	require.NoError(env.T, env.DB.Create(u).Error)

	var r models.Role
	require.NoError(env.T, env.DB.Where("slug = ?", role).First(&r).Error)
	require.NoError(env.T, env.DB.Model(u).Association("Roles").Append(&r))
	return u
}

// login creates a user with the given role and returns a bearer token for it.
func (env *testEnv) login(email, role string) string {
	env.T.Helper()
	env.createUser(email, role)

	rec := env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    email,
		"password": "test_password",
	})
	require.Equal(env.T, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}
