// services/mission.go - Mission Tracker
package services

import (
	"errors"
	"fmt"
	"time"

	"studyclub/database"
	"studyclub/models"

	"gorm.io/gorm"
)

// MissionProgress is the evaluated state of the user's current mission.
type MissionProgress struct {
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	StartedAt       int64  `json:"started_at"`
	Percent         int    `json:"percent"`
	Completed       bool   `json:"completed"`
	RewardGranted   bool   `json:"reward_granted"`
	Score           int    `json:"score,omitempty"`
}

// DefineMission sets (or replaces) the user's daily mission. The completion
// marker is cleared so the new run re-arms the one-time reward even when it
// starts within the same second the previous run was rewarded.
func DefineMission(userID uint, description string, durationMinutes int) (*models.Mission, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("mission duration must be positive")
	}
	if description == "" {
		description = "Today's mission"
	}

	db := database.GetDB()
	now := time.Now().Unix()

	var mission models.Mission
	err := db.Where("user_id = ?", userID).First(&mission).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		mission = models.Mission{UserID: userID}
	case err != nil:
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}

	mission.Description = description
	mission.DurationMinutes = durationMinutes
	mission.StartedAt = now
	mission.CompletedMarker = 0

	if err := db.Save(&mission).Error; err != nil {
		return nil, fmt.Errorf("failed to save mission: %w", err)
	}
	return &mission, nil
}

// EvaluateMission computes mission progress at the given instant and, on
// the first evaluation that reaches 100%, grants the completion reward
// exactly once per mission run. Serialized per user so concurrent
// evaluations cannot double-grant.
func EvaluateMission(userID uint, now time.Time) (*MissionProgress, error) {
	mu := lockUser(userID)
	defer mu.Unlock()

	db := database.GetDB()

	var mission models.Mission
	err := db.Where("user_id = ?", userID).First(&mission).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNoMission
	case err != nil:
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	if mission.StartedAt == 0 {
		return nil, ErrNoMission
	}

	targetSeconds := int64(mission.DurationMinutes) * 60
	elapsed := now.Unix() - mission.StartedAt
	if elapsed < 0 {
		elapsed = 0
	}

	percent := int(elapsed * 100 / targetSeconds)
	if percent > 100 {
		percent = 100
	}

	progress := &MissionProgress{
		Description:     mission.Description,
		DurationMinutes: mission.DurationMinutes,
		StartedAt:       mission.StartedAt,
		Percent:         percent,
		Completed:       mission.CompletedMarker == mission.StartedAt,
	}

	if percent >= 100 && mission.CompletedMarker != mission.StartedAt {
		// The grant and the marker move together; a marker left behind would
		// pay the same run twice on the next evaluation.
		tx := db.Begin()
		if tx.Error != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
		}
		defer func() {
			if r := recover(); r != nil {
				tx.Rollback()
			}
		}()

		result := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("score", gorm.Expr("score + ?", MissionCompleteReward))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to grant points: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			tx.Rollback()
			return nil, ErrUserNotFound
		}

		if err := tx.Model(&models.Mission{}).Where("user_id = ?", userID).
			Update("completed_marker", mission.StartedAt).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record mission completion: %w", err)
		}

		if err := tx.Commit().Error; err != nil {
			return nil, fmt.Errorf("failed to commit mission reward: %w", err)
		}

		var user models.User
		if err := db.Select("score").First(&user, userID).Error; err != nil {
			return nil, fmt.Errorf("failed to reload score: %w", err)
		}

		progress.Completed = true
		progress.RewardGranted = true
		progress.Score = user.Score
	}

	return progress, nil
}
