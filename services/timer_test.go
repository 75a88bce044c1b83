package services

import (
	"testing"

	"studyclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerMinuteRewards(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "clockwatcher", 0)
	svc := GetTimerService()

	state, err := svc.Start(user.ID)
	require.NoError(t, err)
	assert.True(t, state.Running)
	assert.Equal(t, 0, state.SessionSeconds)

	// 150 seconds cross two minute boundaries.
	svc.Advance(user.ID, 150)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2*PerMinuteReward, fresh.Score)
	assert.True(t, fresh.TimerRunning)

	state, err = svc.Stop(user.ID)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Equal(t, 150, state.TotalSeconds)
	assert.Equal(t, 150, state.BestSeconds)

	// Stopping pays nothing extra and zeroes the session.
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2*PerMinuteReward, fresh.Score)
	assert.Equal(t, 0, fresh.CurrentSessionSeconds)
	assert.False(t, fresh.TimerRunning)
}

func TestTimerStartWhileRunningIsNoop(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "doubleclicker", 0)
	svc := GetTimerService()

	_, err := svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 45)

	// A second Start must not reset the clock.
	state, err := svc.Start(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, state.SessionSeconds)
}

func TestTimerStopIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "cautious", 0)
	svc := GetTimerService()

	_, err := svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 70)

	first, err := svc.Stop(user.ID)
	require.NoError(t, err)
	second, err := svc.Stop(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TotalSeconds, second.TotalSeconds)
	assert.Equal(t, first.BestSeconds, second.BestSeconds)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, PerMinuteReward, fresh.Score)
}

func TestTimerBestSessionHighWater(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "pacer", 0)
	svc := GetTimerService()

	_, err := svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 300)
	_, err = svc.Stop(user.ID)
	require.NoError(t, err)

	_, err = svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 120)
	state, err := svc.Stop(user.ID)
	require.NoError(t, err)

	// A shorter second session does not lower the record.
	assert.Equal(t, 300, state.BestSeconds)
	assert.Equal(t, 420, state.TotalSeconds)
}

func TestTimerResumeDoesNotRegrantMinutes(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()

	user := createTestUser(t, db, "survivor", 0)
	svc := GetTimerService()

	_, err := svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 90) // one boundary crossed, +2

	// Process restart: the session is parked with its counters.
	svc.Shutdown()
	InitTimerService()
	defer GetTimerService().Shutdown()
	svc = GetTimerService()

	state, err := svc.State(user.ID)
	require.NoError(t, err)
	assert.True(t, state.Running)
	assert.Equal(t, 90, state.SessionSeconds)

	// The resumed session only pays for the boundary it newly crosses.
	svc.Advance(user.ID, 30)

	var fresh models.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 2*PerMinuteReward, fresh.Score)
	assert.Equal(t, 2, fresh.LastRewardedMinute)
}

func TestTimerStateForIdleUser(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "idle", 0)

	state, err := GetTimerService().State(user.ID)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.SessionSeconds)
}

func TestTimerSubscribeReceivesTicks(t *testing.T) {
	db := setupTestDB(t)
	InitTimerService()
	defer GetTimerService().Shutdown()

	user := createTestUser(t, db, "watcher", 0)
	svc := GetTimerService()

	events, cancel := svc.Subscribe(user.ID)
	defer cancel()

	_, err := svc.Start(user.ID)
	require.NoError(t, err)
	svc.Advance(user.ID, 1)

	event := <-events
	assert.True(t, event.Running)
	assert.Equal(t, 1, event.SessionSeconds)

	_, err = svc.Stop(user.ID)
	require.NoError(t, err)

	// Drain until the stop event arrives.
	for event = range events {
		if !event.Running {
			break
		}
	}
	assert.False(t, event.Running)
}
