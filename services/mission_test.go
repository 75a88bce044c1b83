package services

import (
	"testing"
	"time"

	"studyclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineMission(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "planner", 0)

	mission, err := DefineMission(user.ID, "Finish chapter 4", 45)
	require.NoError(t, err)
	assert.Equal(t, "Finish chapter 4", mission.Description)
	assert.Equal(t, 45, mission.DurationMinutes)
	assert.NotZero(t, mission.StartedAt)

	// Redefining replaces the single row instead of stacking missions.
	_, err = DefineMission(user.ID, "Start chapter 5", 30)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Mission{}).Where("user_id = ?", user.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDefineMissionRejectsBadDuration(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "hasty", 0)

	_, err := DefineMission(user.ID, "zero", 0)
	assert.Error(t, err)
	_, err = DefineMission(user.ID, "negative", -5)
	assert.Error(t, err)
}

func TestEvaluateMissionProgress(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "studier", 0)

	mission, err := DefineMission(user.ID, "Morning session", 30)
	require.NoError(t, err)
	start := time.Unix(mission.StartedAt, 0)

	progress, err := EvaluateMission(user.ID, start.Add(15*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 50, progress.Percent)
	assert.False(t, progress.Completed)
	assert.False(t, progress.RewardGranted)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 0, fresh.Score)
}

func TestMissionCompletionRewardGrantedOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "finisher", 0)

	mission, err := DefineMission(user.ID, "Deep work", 30)
	require.NoError(t, err)
	after := time.Unix(mission.StartedAt, 0).Add(31 * time.Minute)

	progress, err := EvaluateMission(user.ID, after)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)
	assert.True(t, progress.Completed)
	assert.True(t, progress.RewardGranted)
	assert.Equal(t, MissionCompleteReward, progress.Score)

	// A later evaluation of the same run reports completion without paying again.
	progress, err = EvaluateMission(user.ID, after.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.False(t, progress.RewardGranted)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, MissionCompleteReward, fresh.Score)
}

func TestNewMissionRearmsCompletionReward(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "repeater", 0)

	mission, err := DefineMission(user.ID, "Round one", 30)
	require.NoError(t, err)
	_, err = EvaluateMission(user.ID, time.Unix(mission.StartedAt, 0).Add(time.Hour))
	require.NoError(t, err)

	// Redefined in the same wall-clock second as the rewarded run: the
	// cleared marker, not timestamp inequality, must re-arm the reward.
	mission, err = DefineMission(user.ID, "Round two", 30)
	require.NoError(t, err)
	assert.Zero(t, mission.CompletedMarker)

	var stored models.Mission
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Zero(t, stored.CompletedMarker)

	progress, err := EvaluateMission(user.ID, time.Unix(mission.StartedAt, 0).Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, progress.RewardGranted)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2*MissionCompleteReward, fresh.Score)
}

func TestEvaluateMissionWithoutMission(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "aimless", 0)

	_, err := EvaluateMission(user.ID, time.Now())
	assert.ErrorIs(t, err, ErrNoMission)
}
