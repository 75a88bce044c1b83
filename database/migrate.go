// database/migrate.go - Database Migration Runner
package database

import (
	"log"
	"studyclub/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.DailyReward{},
		&models.Mission{},
		&models.Question{},
		&models.Reply{},
		&models.Note{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes for hot query paths
func createIndexes() {
	db := GetDB()

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_score ON users(score DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_timer_running ON users(timer_running)")

	// Question/reply indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_questions_created ON questions(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_replies_question ON replies(question_id)")

	// Note indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notes_user_date ON notes(user_id, date)")
}
