package httpserver_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdemidov/product_api/internal/models"
	"github.com/mdemidov/product_api/internal/tokens"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/register", "", map[string]string{
		"name":                  "New User",
		"email":                 "new@example.com",
		"password":              "secret-password",
		"password_confirmation": "secret-password",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "User registered successfully", body["message"])
	require.Equal(t, "Bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	user := body["user"].(map[string]any)
	require.Equal(t, "new@example.com", user["email"])
	_, hasHash := user["password_hash"]
	require.False(t, hasHash)

	roles := user["roles"].([]any)
	require.Len(t, roles, 1)
	require.Equal(t, "user", roles[0].(map[string]any)["slug"])

	// the returned token authenticates immediately
	rec = env.doJSON(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("taken@example.com", "user")

	rec := env.doJSON(http.MethodPost, "/api/v1/register", "", map[string]string{
		"name":                  "Someone",
		"email":                 "Taken@Example.com",
		"password":              "secret-password",
		"password_confirmation": "secret-password",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	errs := body["errors"].(map[string]any)
	require.Contains(t, errs["email"].([]any), "The email has already been taken.")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/register", "", map[string]string{
		"name":                  "",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "different",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := decode(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs["name"].([]any), "The name field is required.")
	require.Contains(t, errs["email"].([]any), "The email field must be a valid email address.")
	require.Contains(t, errs["password"].([]any), "The password field must be at least 8 characters.")
}

func TestLoginBadCredentialsIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.createUser("known@example.com", "user")

	wrongPassword := env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "known@example.com",
		"password": "not-the-password",
	})
	unknownEmail := env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "not-the-password",
	})

	require.Equal(t, http.StatusUnprocessableEntity, wrongPassword.Code)
	require.Equal(t, http.StatusUnprocessableEntity, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	errs := decode(t, wrongPassword)["errors"].(map[string]any)
	require.Contains(t, errs["email"].([]any), "The provided credentials are incorrect.")
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser("disabled@example.com", "user")
	require.NoError(t, env.DB.Model(u).Update("is_active", false).Error)

	rec := env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "disabled@example.com",
		"password": "test_password",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Your account has been deactivated.", decode(t, rec)["message"])

	// a wrong password on a disabled account still reads as bad credentials
	rec = env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "disabled@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	first := env.login("rotate@example.com", "user")

	rec := env.doJSON(http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "rotate@example.com",
		"password": "test_password",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode(t, rec)["access_token"].(string)

	require.Equal(t, http.StatusUnauthorized, env.doJSON(http.MethodGet, "/api/v1/me", first, nil).Code)
	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/api/v1/me", second, nil).Code)
}

func TestLogoutRevokesOnlyCurrentToken(t *testing.T) {
	env := newTestEnv(t)
	current := env.login("logout@example.com", "user")

	var u models.User
	require.NoError(t, env.DB.Where("email = ?", "logout@example.com").First(&u).Error)

	// a second token inserted out of band must survive the logout
	secret, err := tokens.NewSecret()
	require.NoError(t, err)
	other := models.AccessToken{UserID: u.ID, Name: "other_device", TokenHash: tokens.Sha256Hex(secret)}
	require.NoError(t, env.DB.Create(&other).Error)
	otherPlain := tokens.Compose(other.ID, secret)

	rec := env.doJSON(http.MethodPost, "/api/v1/logout", current, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Logged out successfully", decode(t, rec)["message"])

	require.Equal(t, http.StatusUnauthorized, env.doJSON(http.MethodGet, "/api/v1/me", current, nil).Code)
	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/api/v1/me", otherPlain, nil).Code)
}

func TestUnauthenticatedResponses(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "garbage", "1|deadbeef", "notanumber|deadbeef"} {
		rec := env.doJSON(http.MethodGet, "/api/v1/products", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Unauthenticated.", decode(t, rec)["message"])
	}
}
