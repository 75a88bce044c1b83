// models/models.go - Core Models
package models

import (
	"time"
)

// Mission is a user's current daily goal. One row per user, overwritten
// whenever the mission is redefined. CompletedMarker holds the StartedAt
// value of the run that was rewarded, so redefining the mission (new
// StartedAt) automatically re-arms the one-time completion reward.
type Mission struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	Description     string    `json:"description" gorm:"size:200"`
	DurationMinutes int       `json:"duration_minutes" gorm:"default:30"`
	StartedAt       int64     `json:"started_at" gorm:"default:0"` // unix seconds
	CompletedMarker int64     `json:"completed_marker" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Question is a Q&A board post.
type Question struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Category  string    `json:"category" gorm:"size:50;index"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Reply   `json:"replies,omitempty" gorm:"foreignKey:QuestionID"`
}

// Reply is an answer on a question. Authorship is a real column, not a
// prefix baked into the body text.
type Reply struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	AuthorID   uint      `json:"author_id" gorm:"not null;index"`
	AuthorName string    `json:"author_name" gorm:"size:100"`
	Body       string    `json:"body" gorm:"not null;type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// Note is a dated notebook entry (goal, study log, reading log or diary).
type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Date      string    `json:"date" gorm:"not null;size:10;index"` // "2006-01-02"
	Type      string    `json:"type" gorm:"not null;size:30"`
	Title     string    `json:"title" gorm:"not null;size:200"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName methods for custom table names (optional)
func (Mission) TableName() string {
	return "missions"
}

func (Question) TableName() string {
	return "questions"
}

func (Reply) TableName() string {
	return "replies"
}

func (Note) TableName() string {
	return "notes"
}
