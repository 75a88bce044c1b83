package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"studyclub/database"
	"studyclub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:admindb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DailyReward{},
		&models.Mission{},
		&models.Question{},
		&models.Reply{},
		&models.Note{},
	))

	database.SetDB(db)
	return db
}

func adminApp() *fiber.App {
	app := fiber.New()
	app.Put("/users/:id", UpdateUser)
	app.Delete("/users/:id", DeleteUser)
	return app
}

func userPath(id uint) string {
	return "/users/" + strconv.FormatUint(uint64(id), 10)
}

func TestUpdateUserKeepsAdminFlagWhenOmitted(t *testing.T) {
	db := setupTestDB(t)
	app := adminApp()

	moderator := models.User{Username: "moderator", Password: "hash", IsAdmin: true}
	require.NoError(t, db.Create(&moderator).Error)

	// A score-only update must not touch the admin flag.
	body, _ := json.Marshal(fiber.Map{"score": 42})
	req := httptest.NewRequest("PUT", userPath(moderator.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var fresh models.User
	require.NoError(t, db.First(&fresh, moderator.ID).Error)
	assert.True(t, fresh.IsAdmin)
	assert.Equal(t, 42, fresh.Score)

	// An explicit false still demotes.
	body, _ = json.Marshal(fiber.Map{"is_admin": false})
	req = httptest.NewRequest("PUT", userPath(moderator.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	require.NoError(t, db.First(&fresh, moderator.ID).Error)
	assert.False(t, fresh.IsAdmin)
}

func TestUpdateUserRejectsNegativeScore(t *testing.T) {
	db := setupTestDB(t)
	app := adminApp()

	user := models.User{Username: "victim", Password: "hash", Score: 10}
	require.NoError(t, db.Create(&user).Error)

	body, _ := json.Marshal(fiber.Map{"score": -1})
	req := httptest.NewRequest("PUT", userPath(user.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 10, fresh.Score)
}

func TestDeleteUserRemovesBoardActivity(t *testing.T) {
	db := setupTestDB(t)
	app := adminApp()

	leaver := models.User{Username: "leaver", Password: "hash"}
	stayer := models.User{Username: "stayer", Password: "hash"}
	require.NoError(t, db.Create(&leaver).Error)
	require.NoError(t, db.Create(&stayer).Error)

	leaverQuestion := models.Question{AuthorID: leaver.ID, Title: "mine", Content: "text"}
	stayerQuestion := models.Question{AuthorID: stayer.ID, Title: "theirs", Content: "text"}
	require.NoError(t, db.Create(&leaverQuestion).Error)
	require.NoError(t, db.Create(&stayerQuestion).Error)

	require.NoError(t, db.Create(&models.Reply{
		QuestionID: leaverQuestion.ID, AuthorID: stayer.ID, AuthorName: "stayer", Body: "on deleted question",
	}).Error)
	require.NoError(t, db.Create(&models.Reply{
		QuestionID: stayerQuestion.ID, AuthorID: leaver.ID, AuthorName: "leaver", Body: "by deleted user",
	}).Error)
	require.NoError(t, db.Create(&models.Reply{
		QuestionID: stayerQuestion.ID, AuthorID: stayer.ID, AuthorName: "stayer", Body: "untouched",
	}).Error)

	req := httptest.NewRequest("DELETE", userPath(leaver.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	// Nothing authored by the deleted user survives, including replies by
	// others under their questions. The other user's thread is intact.
	var questions []models.Question
	require.NoError(t, db.Find(&questions).Error)
	require.Len(t, questions, 1)
	assert.Equal(t, stayerQuestion.ID, questions[0].ID)

	var replies []models.Reply
	require.NoError(t, db.Find(&replies).Error)
	require.Len(t, replies, 1)
	assert.Equal(t, "untouched", replies[0].Body)

	var count int64
	db.Model(&models.User{}).Where("id = ?", leaver.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteUserRefusesAdmins(t *testing.T) {
	db := setupTestDB(t)
	app := adminApp()

	moderator := models.User{Username: "moderator", Password: "hash", IsAdmin: true}
	require.NoError(t, db.Create(&moderator).Error)

	req := httptest.NewRequest("DELETE", userPath(moderator.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 403, resp.StatusCode)
}
