package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func signTestToken(t *testing.T, isAdmin bool) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id":  float64(7),
		"username": "tester",
		"is_guest": false,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareExposesAdminClaim(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/check", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"admin": IsAdmin(c)})
	})

	// The admin flag handlers read must mirror the token claim.
	for _, isAdmin := range []bool{true, false} {
		req := httptest.NewRequest("GET", "/check", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, isAdmin))

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var body map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, isAdmin, body["admin"])
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/check", AuthMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})

	req := httptest.NewRequest("GET", "/check", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}
