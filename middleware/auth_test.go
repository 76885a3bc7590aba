package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/smart-clinic/models"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

type body struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func newGuardedApp(tokens *services.TokenService) *fiber.App {
	app := fiber.New()
	app.Use(Guard(tokens))
	app.Post("/api/auth/login", func(c *fiber.Ctx) error { return c.SendString("public") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/whoami", func(c *fiber.Ctx) error {
		sub, ok := SubjectFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"userId": sub.UserID, "role": sub.Role, "email": sub.Email})
	})
	app.Get("/api/doctors-only", RequireRole(models.RoleDoctor), func(c *fiber.Ctx) error {
		return c.SendString("welcome")
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string) (*http.Response, body) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var b body
	if resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	}
	return resp, b
}

func issue(t *testing.T, tokens *services.TokenService, id uint, role models.Role) string {
	t.Helper()
	tok, _, err := tokens.Issue(&models.User{ID: id, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestGuard_PublicPaths(t *testing.T) {
	app := newGuardedApp(services.NewTokenService(secret, time.Hour, nil))

	resp, _ := call(t, app, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, IsPublicPath("/api/auth/register/"))
	assert.False(t, IsPublicPath("/api/auth/me"))
}

func TestGuard_MissingOrMalformed(t *testing.T) {
	app := newGuardedApp(services.NewTokenService(secret, time.Hour, nil))

	for _, auth := range []string{"", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz", "token-without-scheme"} {
		resp, b := call(t, app, http.MethodGet, "/api/whoami", auth)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, auth)
		assert.Equal(t, "error", b.Status)
		assert.Equal(t, "Unauthorized: missing or malformed bearer token", b.Message)
		assert.Equal(t, "/api/whoami", b.Path)
	}

	// Unknown protected paths are rejected before routing.
	resp, b := call(t, app, http.MethodGet, "/api/does-not-exist", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/api/does-not-exist", b.Path)
}

func TestGuard_InvalidTokens(t *testing.T) {
	tokens := services.NewTokenService(secret, time.Hour, nil)
	app := newGuardedApp(tokens)

	expiredIssuer := services.NewTokenService(secret, time.Hour, func() time.Time { return time.Now().Add(-2 * time.Hour) })
	otherKey := services.NewTokenService([]byte("another-secret-another-secret-xx"), time.Hour, nil)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, services.Claims{
		UserID: 1, Role: models.RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID: 1, Role: "NURSE",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		UserID: 7, Role: models.RoleDoctor,
	}).SignedString(secret)
	require.NoError(t, err)

	for name, auth := range map[string]string{
		"expired":      issue(t, expiredIssuer, 1, models.RoleDoctor),
		"wrong key":    issue(t, otherKey, 1, models.RoleDoctor),
		"garbage":      "Bearer not.a.jwt",
		"hs512":        "Bearer " + hs512,
		"unknown role": "Bearer " + unknownRole,
		"no expiry":    "Bearer " + noExpiry,
	} {
		resp, b := call(t, app, http.MethodGet, "/api/whoami", auth)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
		assert.Equal(t, "Unauthorized: invalid or expired token", b.Message, name)
	}
}

func TestGuard_BindsSubject(t *testing.T) {
	tokens := services.NewTokenService(secret, time.Hour, nil)
	app := newGuardedApp(tokens)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, issue(t, tokens, 42, models.RolePatient))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		UserID uint        `json:"userId"`
		Role   models.Role `json:"role"`
		Email  string      `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, uint(42), got.UserID)
	assert.Equal(t, models.RolePatient, got.Role)
	assert.Equal(t, "u@example.com", got.Email)
}

func TestRequireRole(t *testing.T) {
	tokens := services.NewTokenService(secret, time.Hour, nil)
	app := newGuardedApp(tokens)

	resp, _ := call(t, app, http.MethodGet, "/api/doctors-only", issue(t, tokens, 1, models.RoleDoctor))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, role := range []models.Role{models.RolePatient, models.RoleAdmin} {
		resp, b := call(t, app, http.MethodGet, "/api/doctors-only", issue(t, tokens, 2, role))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, role)
		assert.Equal(t, "Forbidden: insufficient role", b.Message)
	}
}
