// models/user.go
package models

import (
	"time"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`
	IsGuest  bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin  bool    `gorm:"default:false" json:"is_admin"`

	// Rewards
	Score             int    `gorm:"default:0" json:"score"`
	EquippedBadge     string `gorm:"default:''" json:"equipped_badge"`
	OwnedBadgeTier    string `gorm:"default:''" json:"owned_badge_tier"`
	DiamondBadgeCount int    `gorm:"default:0" json:"diamond_badge_count"`

	// Study time
	TotalStudySeconds     int  `gorm:"default:0" json:"total_study_seconds"`
	BestStudySeconds      int  `gorm:"default:0" json:"best_study_seconds"`
	CurrentSessionSeconds int  `gorm:"default:0" json:"current_session_seconds"`
	LastRewardedMinute    int  `gorm:"default:0" json:"-"`
	TimerRunning          bool `gorm:"default:false" json:"timer_running"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Notes []Note `gorm:"foreignKey:UserID" json:"notes,omitempty"`
}

// DailyReward tracks how many capped Q&A rewards a user has received on a
// given calendar day. One row per user per day; the date string is the
// day in "2006-01-02" form. Counters roll over lazily when the stored
// date no longer matches today.
type DailyReward struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	UserID              uint   `gorm:"not null;uniqueIndex:idx_daily_rewards_user_date" json:"user_id"`
	Date                string `gorm:"not null;size:10;uniqueIndex:idx_daily_rewards_user_date" json:"date"`
	QuestionRewardCount int    `gorm:"default:0" json:"question_reward_count"`
	ReplyRewardCount    int    `gorm:"default:0" json:"reply_reward_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyReward) TableName() string {
	return "daily_rewards"
}
