package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"studyclub/database"
	"studyclub/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

// setupTestDB wires an isolated in-memory database into the service layer.
// Each test gets its own named shared-cache database so every pooled
// connection sees the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.DailyReward{},
		&models.Mission{},
	))

	database.SetDB(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, score int) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "not-a-real-hash",
		Score:    score,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
