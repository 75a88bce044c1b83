// services/rewards.go - Reward Ledger
//
// All point-granting rules live here so the caps, the non-negative score
// rule and the badge ladder are enforced in exactly one place.
package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"studyclub/database"
	"studyclub/models"

	"gorm.io/gorm"
)

// Reward amounts and limits.
const (
	MissionCompleteReward = 50
	PerMinuteReward       = 2
	QuestionReward        = 10
	ReplyReward           = 5
	MaxDailyQAReward      = 2
)

// RewardKind selects which daily counter a capped reward consumes.
type RewardKind string

const (
	RewardQuestion RewardKind = "question"
	RewardReply    RewardKind = "reply"
)

// RewardResult reports the outcome of a capped grant. Granted=false with a
// nil error means the daily cap was reached - a normal outcome, not a
// failure.
type RewardResult struct {
	Granted bool `json:"granted"`
	Count   int  `json:"count"`
	Max     int  `json:"max"`
	Score   int  `json:"score"`
}

// Per-user locks serialize the check-then-act sequence on the daily
// counter so a rapid double-submit cannot over-grant past the cap.
var (
	userLocksMu sync.Mutex
	userLocks   = make(map[uint]*sync.Mutex)
)

func lockUser(userID uint) *sync.Mutex {
	userLocksMu.Lock()
	mu, ok := userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		userLocks[userID] = mu
	}
	userLocksMu.Unlock()

	mu.Lock()
	return mu
}

// GrantPoints unconditionally adds amount to the user's score and returns
// the new balance. Used for uncapped sources (timer minutes, mission
// completion). The increment is pushed into the store so concurrent grants
// cannot clobber each other.
func GrantPoints(userID uint, amount int) (int, error) {
	db := database.GetDB()

	result := db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("score", gorm.Expr("score + ?", amount))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to grant points: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrUserNotFound
	}

	var user models.User
	if err := db.Select("score").First(&user, userID).Error; err != nil {
		return 0, fmt.Errorf("failed to reload score: %w", err)
	}
	return user.Score, nil
}

// GrantDailyCappedReward grants a Q&A reward unless the user already
// received the daily maximum for that action kind. The counter row rolls
// over lazily when its stored date is not today. Counter and score move in
// one transaction, serialized per user.
func GrantDailyCappedReward(userID uint, kind RewardKind, amount int) (*RewardResult, error) {
	if kind != RewardQuestion && kind != RewardReply {
		return nil, fmt.Errorf("unknown reward kind %q", kind)
	}

	mu := lockUser(userID)
	defer mu.Unlock()

	db := database.GetDB()
	today := time.Now().Format("2006-01-02")

	var reward models.DailyReward
	err := db.Where("user_id = ?", userID).First(&reward).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		reward = models.DailyReward{UserID: userID, Date: today}
	case err != nil:
		return nil, fmt.Errorf("failed to load daily reward counter: %w", err)
	}

	// Lazy rollover on the first access of a new day.
	if reward.Date != today {
		reward.Date = today
		reward.QuestionRewardCount = 0
		reward.ReplyRewardCount = 0
	}

	count := reward.QuestionRewardCount
	if kind == RewardReply {
		count = reward.ReplyRewardCount
	}

	if count >= MaxDailyQAReward {
		var user models.User
		if err := db.Select("score").First(&user, userID).Error; err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		log.Printf("Daily %s reward cap reached for user %d (%d/%d)", kind, userID, count, MaxDailyQAReward)
		return &RewardResult{Granted: false, Count: count, Max: MaxDailyQAReward, Score: user.Score}, nil
	}

	count++
	if kind == RewardQuestion {
		reward.QuestionRewardCount = count
	} else {
		reward.ReplyRewardCount = count
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Save(&reward).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save daily reward counter: %w", err)
	}

	result := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("score", gorm.Expr("score + ?", amount))
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to grant points: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrUserNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit reward: %w", err)
	}

	var user models.User
	if err := db.Select("score").First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload score: %w", err)
	}

	return &RewardResult{Granted: true, Count: count, Max: MaxDailyQAReward, Score: user.Score}, nil
}
