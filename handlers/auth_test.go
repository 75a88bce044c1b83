package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"studyclub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *AuthResponse {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func TestRegisterWithoutEmail(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	app.Post("/api/auth/register", Register)

	// Two accounts with no email must both succeed: the optional email
	// column stays NULL instead of colliding on the unique index.
	for _, name := range []string{"noemail_one", "noemail_two"} {
		resp := postJSON(t, app, "/api/auth/register", fiber.Map{
			"username": name,
			"password": "secret123",
		})
		assert.True(t, resp.Success, "registration of %s", name)
		assert.NotEmpty(t, resp.Token)
	}

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Nil(t, u.Email)
	}
}

func TestRegisterStoresSuppliedEmail(t *testing.T) {
	db := setupTestDB(t)

	app := fiber.New()
	app.Post("/api/auth/register", Register)

	resp := postJSON(t, app, "/api/auth/register", fiber.Map{
		"username": "withemail",
		"password": "secret123",
		"email":    "someone@example.com",
	})
	assert.True(t, resp.Success)

	var user models.User
	require.NoError(t, db.Where("username = ?", "withemail").First(&user).Error)
	require.NotNil(t, user.Email)
	assert.Equal(t, "someone@example.com", *user.Email)
}
