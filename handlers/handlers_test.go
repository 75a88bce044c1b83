package handlers

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

// setupTestDB wires an isolated in-memory database into the handler layer.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handlerdb%d?mode=memory&cache=shared", testDBCounter.Add(1))
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
