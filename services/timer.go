// services/timer.go - Study Timer
//
// One running session per user, driven by a one-second ticker goroutine
// owned by this service. Stopping is idempotent, starting while running is
// a no-op, and a session marked running in the store is resumed after a
// process restart without re-granting minute rewards that were already
// paid out.
package services

import (
	"log"
	"sync"
	"time"

	"studyclub/database"
	"studyclub/models"
)

// TickEvent is pushed to subscribers on every timer second.
type TickEvent struct {
	SessionSeconds int  `json:"session_seconds"`
	TotalSeconds   int  `json:"total_seconds"`
	MinuteRewarded bool `json:"minute_rewarded"`
	Running        bool `json:"running"`
}

// TimerState is the view snapshot returned by timer operations.
type TimerState struct {
	Running        bool `json:"running"`
	SessionSeconds int  `json:"session_seconds"`
	TotalSeconds   int  `json:"total_seconds"`
	BestSeconds    int  `json:"best_seconds"`
}

type studySession struct {
	seconds      int // current session seconds
	total        int // lifetime study seconds
	lastRewarded int // last minute boundary that was rewarded
	done         chan struct{}
}

// TimerService owns every live study session and its ticker.
type TimerService struct {
	mu       sync.Mutex
	sessions map[uint]*studySession
	subs     map[uint]map[chan TickEvent]struct{}
}

var timerService *TimerService

// InitTimerService initializes the singleton timer service and resumes any
// session that was running when the process last stopped.
func InitTimerService() {
	timerService = &TimerService{
		sessions: make(map[uint]*studySession),
		subs:     make(map[uint]map[chan TickEvent]struct{}),
	}
	timerService.resumeRunningSessions()
}

// GetTimerService returns the initialized timer service.
func GetTimerService() *TimerService {
	return timerService
}

// Start begins (or resumes) the user's study session. Calling Start while
// the session is already running is a no-op that returns the live state.
func (s *TimerService) Start(userID uint) (*TimerState, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		state := sessionState(sess)
		s.mu.Unlock()
		return state, nil
	}
	s.mu.Unlock()

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("timer_running", true).Error; err != nil {
		return nil, err
	}

	return s.startSession(&user), nil
}

// startSession registers the session and launches its ticker. Session
// counters are seeded from the persisted record so a resume picks up where
// the last minute-boundary write left off.
func (s *TimerService) startSession(user *models.User) *TimerState {
	sess := &studySession{
		seconds:      user.CurrentSessionSeconds,
		total:        user.TotalStudySeconds,
		lastRewarded: user.LastRewardedMinute,
		done:         make(chan struct{}),
	}

	s.mu.Lock()
	if existing, ok := s.sessions[user.ID]; ok {
		state := sessionState(existing)
		s.mu.Unlock()
		return state
	}
	s.sessions[user.ID] = sess
	s.mu.Unlock()

	go s.run(user.ID, sess)

	log.Printf("⏱️  Timer started for user %d (session %ds, total %ds)",
		user.ID, sess.seconds, sess.total)

	return &TimerState{
		Running:        true,
		SessionSeconds: sess.seconds,
		TotalSeconds:   sess.total,
		BestSeconds:    user.BestStudySeconds,
	}
}

func (s *TimerService) run(userID uint, sess *studySession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Advance(userID, 1)
		case <-sess.done:
			return
		}
	}
}

// Advance moves the user's session clock forward. The ticker goroutine
// calls it once per second; tests drive it directly. Minute rewards are
// granted exactly once per boundary crossed, and counters are persisted at
// minute boundaries only to bound write volume.
func (s *TimerService) Advance(userID uint, seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return
	}

	db := database.GetDB()

	for i := 0; i < seconds; i++ {
		sess.seconds++
		sess.total++

		minute := sess.seconds / 60
		if minute <= sess.lastRewarded {
			continue
		}

		for boundary := sess.lastRewarded + 1; boundary <= minute; boundary++ {
			if _, err := GrantPoints(userID, PerMinuteReward); err != nil {
				log.Printf("Failed to grant minute reward for user %d: %v", userID, err)
			}
		}
		sess.lastRewarded = minute

		if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"current_session_seconds": sess.seconds,
			"total_study_seconds":     sess.total,
			"last_rewarded_minute":    sess.lastRewarded,
		}).Error; err != nil {
			log.Printf("Failed to persist timer progress for user %d: %v", userID, err)
		}
	}

	s.broadcast(userID, TickEvent{
		SessionSeconds: sess.seconds,
		TotalSeconds:   sess.total,
		MinuteRewarded: sess.seconds%60 == 0 && sess.seconds > 0,
		Running:        true,
	})
}

// Stop ends the user's session: the ticker is cancelled, the best-session
// high-water mark is updated, and the session counter is zeroed both in
// memory and in the store. Stopping an already-stopped timer only makes
// sure the persisted running flag is cleared.
func (s *TimerService) Stop(userID uint) (*TimerState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		close(sess.done)
	}
	s.mu.Unlock()

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	seconds := user.CurrentSessionSeconds
	total := user.TotalStudySeconds
	if ok {
		seconds = sess.seconds
		total = sess.total
	}

	best := user.BestStudySeconds
	if seconds > best {
		best = seconds
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"total_study_seconds":     total,
		"best_study_seconds":      best,
		"current_session_seconds": 0,
		"last_rewarded_minute":    0,
		"timer_running":           false,
	}).Error; err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.broadcast(userID, TickEvent{TotalSeconds: total, Running: false})
	s.mu.Unlock()

	if ok {
		log.Printf("⏱️  Timer stopped for user %d (session %ds, best %ds)", userID, seconds, best)
	}

	return &TimerState{
		Running:        false,
		SessionSeconds: 0,
		TotalSeconds:   total,
		BestSeconds:    best,
	}, nil
}

// State returns the current timer view for a user without mutating it.
func (s *TimerService) State(userID uint) (*TimerState, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	var state *TimerState
	if ok {
		state = sessionState(sess)
	}
	s.mu.Unlock()

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if state == nil {
		return &TimerState{
			Running:        false,
			SessionSeconds: user.CurrentSessionSeconds,
			TotalSeconds:   user.TotalStudySeconds,
			BestSeconds:    user.BestStudySeconds,
		}, nil
	}

	state.BestSeconds = user.BestStudySeconds
	return state, nil
}

// Subscribe attaches a listener for a user's tick events. The returned
// cancel function must be called when the listener goes away.
func (s *TimerService) Subscribe(userID uint) (<-chan TickEvent, func()) {
	ch := make(chan TickEvent, 16)

	s.mu.Lock()
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[chan TickEvent]struct{})
	}
	s.subs[userID][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if set, ok := s.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(s.subs, userID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcast delivers an event to every subscriber without blocking the
// timer. Callers must hold s.mu.
func (s *TimerService) broadcast(userID uint, event TickEvent) {
	for ch := range s.subs[userID] {
		select {
		case ch <- event:
		default:
			// Slow consumer; drop the tick.
		}
	}
}

// Shutdown cancels every live ticker and persists session counters without
// clearing the running flags, so sessions resume after the next start.
func (s *TimerService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uint]*studySession)
	s.mu.Unlock()

	db := database.GetDB()
	for userID, sess := range sessions {
		close(sess.done)
		if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"current_session_seconds": sess.seconds,
			"total_study_seconds":     sess.total,
			"last_rewarded_minute":    sess.lastRewarded,
		}).Error; err != nil {
			log.Printf("Failed to persist timer state for user %d on shutdown: %v", userID, err)
		}
	}

	if len(sessions) > 0 {
		log.Printf("⏱️  Timer service shut down, %d session(s) parked", len(sessions))
	}
}

// resumeRunningSessions restarts tickers for users whose sessions were
// live when the process last stopped.
func (s *TimerService) resumeRunningSessions() {
	db := database.GetDB()

	var users []models.User
	if err := db.Where("timer_running = ?", true).Find(&users).Error; err != nil {
		log.Printf("Failed to look up running timers: %v", err)
		return
	}

	for i := range users {
		s.startSession(&users[i])
	}

	if len(users) > 0 {
		log.Printf("⏱️  Resumed %d running timer session(s)", len(users))
	}
}

func sessionState(sess *studySession) *TimerState {
	return &TimerState{
		Running:        true,
		SessionSeconds: sess.seconds,
		TotalSeconds:   sess.total,
	}
}
