package handlers

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"studyclub/middleware"
	"studyclub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func questionApp() *fiber.App {
	app := fiber.New()
	app.Delete("/api/questions/:id", middleware.AuthMiddleware, DeleteQuestion)
	return app
}

func createQuestionUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "not-a-real-hash",
		IsAdmin:  isAdmin,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func deleteAs(t *testing.T, app *fiber.App, user *models.User, questionID uint) int {
	t.Helper()

	token, err := generateToken(*user)
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/api/questions/"+strconv.FormatUint(uint64(questionID), 10), nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestDeleteQuestionAuthorOrAdminOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret")

	db := setupTestDB(t)
	author := createQuestionUser(t, db, "poster", false)
	stranger := createQuestionUser(t, db, "stranger", false)
	admin := createQuestionUser(t, db, "moderator", true)

	app := questionApp()

	question := models.Question{AuthorID: author.ID, Title: "stuck on recursion", Content: "help"}
	require.NoError(t, db.Create(&question).Error)

	// A third party is rejected; the token's admin claim is what lets a
	// moderator through.
	assert.Equal(t, 403, deleteAs(t, app, stranger, question.ID))
	assert.Equal(t, 200, deleteAs(t, app, admin, question.ID))

	var count int64
	db.Model(&models.Question{}).Where("id = ?", question.ID).Count(&count)
	assert.EqualValues(t, 0, count)

	question = models.Question{AuthorID: author.ID, Title: "another question", Content: "text"}
	require.NoError(t, db.Create(&question).Error)
	assert.Equal(t, 200, deleteAs(t, app, author, question.ID))
}
