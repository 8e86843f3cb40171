// Package store holds the authoritative in-memory game state for a signed-in
// identity and mirrors it to the persistence gateway after every mutation.
// Mutations apply synchronously under the store lock; the flush to storage is
// asynchronous and serialized so at most one save is in flight per store.
package store

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"studyquest/game"
	"studyquest/models"
)

const (
	maxSaveRetries = 3
	saveRetryDelay = 2 * time.Second
)

// Store is the game state of one bound identity. A zero identity ("") means
// the store holds defaults and nothing is persisted. Construct with New and
// point at a user with BindIdentity.
type Store struct {
	gw       Gateway
	notifier Notifier

	mu           sync.Mutex
	uid          string
	xp           int
	level        int
	streak       int
	powerUps     []models.PowerUp
	achievements []models.Achievement
	missions     []models.Mission
	exams        []models.Exam
	timetable    []models.TimetableSession
	lastLogin    time.Time
	loading      bool

	// saveMu serializes every gateway write for this store: the background
	// writer, the synchronous Flush and the identity-switch flush all hold it
	// from snapshot capture through save completion, so a write carrying an
	// older snapshot can never land after one carrying a newer snapshot.
	saveMu sync.Mutex

	dirty     bool
	saving    bool
	saveFails int
}

func New(gw Gateway, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	s := &Store{gw: gw, notifier: notifier}
	s.resetLocked()
	return s
}

// resetLocked installs defaults. Caller holds s.mu (or owns s exclusively).
func (s *Store) resetLocked() {
	s.xp = 0
	s.level = 1
	s.streak = 0
	s.powerUps = models.DefaultPowerUps()
	s.achievements = models.DefaultAchievements()
	s.missions = nil
	s.exams = nil
	s.timetable = nil
	s.lastLogin = time.Time{}
	s.dirty = false
	s.saveFails = 0
}

func (s *Store) snapshotLocked() models.Snapshot {
	return models.Snapshot{
		XP:            s.xp,
		Level:         s.level,
		Streak:        s.streak,
		PowerUps:      append([]models.PowerUp(nil), s.powerUps...),
		Achievements:  append([]models.Achievement(nil), s.achievements...),
		Missions:      append([]models.Mission(nil), s.missions...),
		Exams:         append([]models.Exam(nil), s.exams...),
		Timetable:     append([]models.TimetableSession(nil), s.timetable...),
		LastLoginDate: s.lastLogin,
	}
}

// BindIdentity re-points the store at a new identity. The outgoing identity's
// state is flushed before defaults are installed and before the incoming
// document is fetched, so unsaved mutations are never lost on switch. The
// flush waits for any in-flight background save to complete first. Binding
// the already-bound identity is a no-op. An empty uid unbinds (sign-out).
func (s *Store) BindIdentity(ctx context.Context, uid string) error {
	s.saveMu.Lock()
	s.mu.Lock()
	if s.uid == uid {
		s.mu.Unlock()
		s.saveMu.Unlock()
		return nil
	}
	prev := s.uid
	var outgoing models.Snapshot
	if prev != "" {
		outgoing = s.snapshotLocked()
	}
	s.resetLocked()
	s.uid = uid
	s.loading = uid != ""
	s.mu.Unlock()

	if prev != "" {
		if err := s.gw.SaveProfile(ctx, prev, outgoing); err != nil {
			log.Printf("store: failed to flush outgoing state for %s: %v", prev, err)
		}
	}
	s.saveMu.Unlock()

	if uid == "" {
		return nil
	}

	profile, err := s.gw.LoadProfile(ctx, uid)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		log.Printf("store: failed to load profile for %s: %v", uid, err)
		return err
	}
	if profile == nil {
		// New user: defaults stay in place.
		return nil
	}
	s.hydrateLocked(profile)
	return nil
}

// hydrateLocked installs a fetched document field by field, keeping defaults
// for anything the document is missing. The level is a projection of XP and is
// recomputed rather than read from the document.
func (s *Store) hydrateLocked(p *models.UserProfile) {
	s.xp = p.XP
	s.level = game.LevelForXP(p.XP)
	s.streak = p.Streak
	if len(p.PowerUps) > 0 {
		s.powerUps = p.PowerUps
	}
	if len(p.Achievements) > 0 {
		s.achievements = p.Achievements
	}
	s.missions = p.Missions
	s.exams = p.Exams
	s.timetable = p.Timetable
	s.lastLogin = p.LastLoginDate
}

// Loading reports whether a hydration fetch is in progress.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// UID returns the bound identity, or "" when unbound.
func (s *Store) UID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

// State returns a point-in-time copy of the full game state.
func (s *Store) State() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddXP adjusts XP by amount (negative amounts are penalties) and recomputes
// the level. XP is deliberately not floored at zero.
func (s *Store) AddXP(amount int) {
	s.mu.Lock()
	events := s.addXPLocked(amount)
	s.scheduleFlushLocked()
	s.mu.Unlock()
	s.emit(events)
}

// addXPLocked applies an XP delta, recomputes the level and evaluates the
// threshold achievements. Returns the events to emit once the lock is released.
func (s *Store) addXPLocked(amount int) []models.GamificationEvent {
	var events []models.GamificationEvent
	oldLevel := s.level
	s.xp += amount
	s.level = game.LevelForXP(s.xp)
	if s.level > oldLevel {
		events = append(events, models.GamificationEvent{
			Type:      models.EventLevelUp,
			UserID:    s.uid,
			NewXP:     s.xp,
			NewLevel:  s.level,
			Timestamp: time.Now(),
		})
	}
	if s.level >= 10 {
		events = append(events, s.unlockLocked(models.AchievementLevel10)...)
	}
	if s.xp >= 1000 {
		events = append(events, s.unlockLocked(models.AchievementXP1000)...)
	}
	return events
}

// unlockLocked flips an achievement to unlocked if present and still locked.
// Unlocking is monotonic.
func (s *Store) unlockLocked(id string) []models.GamificationEvent {
	for i := range s.achievements {
		a := &s.achievements[i]
		if a.ID != id || a.Unlocked {
			continue
		}
		now := time.Now()
		a.Unlocked = true
		a.UnlockedAt = &now
		return []models.GamificationEvent{{
			Type:      models.EventAchievementUnlocked,
			UserID:    s.uid,
			Title:     a.Name,
			Message:   a.Description,
			Timestamp: now,
		}}
	}
	return nil
}

// UnlockAchievement unlocks by id. Unknown ids return ErrAchievementNotFound;
// an already-unlocked achievement is a silent no-op.
func (s *Store) UnlockAchievement(id string) error {
	s.mu.Lock()
	found := false
	for i := range s.achievements {
		if s.achievements[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrAchievementNotFound
	}
	events := s.unlockLocked(id)
	if len(events) > 0 {
		s.scheduleFlushLocked()
	}
	s.mu.Unlock()
	s.emit(events)
	return nil
}

// AddMission validates, freezes the XP value and appends a new mission.
func (s *Store) AddMission(title, subject string, durationMinutes int, deadline time.Time, priority models.Priority) (models.Mission, error) {
	if title == "" || durationMinutes <= 0 || deadline.IsZero() {
		return models.Mission{}, ErrInvalidMission
	}
	xpValue, err := game.MissionXP(durationMinutes, priority)
	if err != nil {
		return models.Mission{}, err
	}
	m := models.Mission{
		ID:        primitive.NewObjectID().Hex(),
		Title:     title,
		Subject:   subject,
		Duration:  durationMinutes,
		Deadline:  deadline,
		XPValue:   xpValue,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.missions = append(s.missions, m)
	s.scheduleFlushLocked()
	s.mu.Unlock()
	return m, nil
}

// CompleteMission marks a mission done, awards its frozen XP once and unlocks
// the first-mission achievement on the user's first-ever completion. Completing
// an already-completed mission is a no-op.
func (s *Store) CompleteMission(id string) error {
	s.mu.Lock()
	idx := s.missionIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrMissionNotFound
	}
	m := &s.missions[idx]
	if m.Completed {
		s.mu.Unlock()
		return nil
	}

	firstEver := true
	for i := range s.missions {
		if i != idx && s.missions[i].Completed {
			firstEver = false
			break
		}
	}

	now := time.Now()
	m.Completed = true
	m.CompletedAt = &now
	events := s.addXPLocked(m.XPValue)
	if firstEver {
		events = append(events, s.unlockLocked(models.AchievementFirstMission)...)
	}
	s.scheduleFlushLocked()
	s.mu.Unlock()
	s.emit(events)
	return nil
}

// DeleteMission removes by id; a missing mission is reported but nothing else
// happens.
func (s *Store) DeleteMission(id string) error {
	s.mu.Lock()
	idx := s.missionIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrMissionNotFound
	}
	s.missions = append(s.missions[:idx], s.missions[idx+1:]...)
	s.scheduleFlushLocked()
	s.mu.Unlock()
	return nil
}

// StartTimer begins (or resumes) a mission's work timer. Completed missions
// never transition.
func (s *Store) StartTimer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.missionIndexLocked(id)
	if idx < 0 {
		return ErrMissionNotFound
	}
	m := &s.missions[idx]
	if m.Completed {
		return nil
	}
	now := time.Now()
	m.TimerActive = true
	m.TimerStartTime = &now
	if m.TimeRemaining == nil {
		remaining := m.Duration
		m.TimeRemaining = &remaining
	}
	s.scheduleFlushLocked()
	return nil
}

// StopTimer halts a running timer, banking the remaining whole minutes. A
// mission that is not actively timing is a no-op.
func (s *Store) StopTimer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.missionIndexLocked(id)
	if idx < 0 {
		return ErrMissionNotFound
	}
	s.stopTimerLocked(&s.missions[idx], time.Now())
	return nil
}

func (s *Store) stopTimerLocked(m *models.Mission, now time.Time) {
	if !m.TimerActive {
		return
	}
	remainingSeconds := game.TimeRemainingSeconds(*m, now)
	remainingMinutes := remainingSeconds / 60
	m.TimerActive = false
	m.TimerStartTime = nil
	m.TimeRemaining = &remainingMinutes
	s.scheduleFlushLocked()
}

// ExpireTimers stops any running timer whose remaining time has hit zero.
// Run periodically by the sweeper so expiry does not depend on a client
// polling.
func (s *Store) ExpireTimers(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.missions {
		m := &s.missions[i]
		if m.TimerActive && !m.Completed && game.TimeRemainingSeconds(*m, now) == 0 {
			s.stopTimerLocked(m, now)
		}
	}
}

// SweepDeadlines flags missions whose deadline has passed, applying the XP
// penalty exactly once per mission and emitting a best-effort notification for
// each. Persists only when at least one mission transitioned.
func (s *Store) SweepDeadlines(now time.Time) {
	s.mu.Lock()
	var events []models.GamificationEvent
	changed := false
	for i := range s.missions {
		m := &s.missions[i]
		if m.Completed || m.Overdue || !game.Overdue(m.Deadline, now) {
			continue
		}
		m.Overdue = true
		changed = true
		penalty := game.OverduePenalty(m.XPValue)
		events = append(events, s.addXPLocked(-penalty)...)
		events = append(events, models.GamificationEvent{
			Type:      models.EventMissionOverdue,
			UserID:    s.uid,
			Title:     "Mission Overdue!",
			Message:   fmt.Sprintf("%s is overdue! You lost %d XP.", m.Title, penalty),
			Points:    -penalty,
			NewXP:     s.xp,
			Timestamp: now,
		})
	}
	if changed {
		s.scheduleFlushLocked()
	}
	s.mu.Unlock()
	s.emit(events)
}

// ActivatePowerUp sets the power-up active and stamps its last-used time. The
// store does not gate on cooldown; the HTTP layer checks preconditions before
// calling. Nothing ever clears Active back to false.
func (s *Store) ActivatePowerUp(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.powerUps {
		if s.powerUps[i].ID == id {
			now := time.Now()
			s.powerUps[i].Active = true
			s.powerUps[i].LastUsed = &now
			s.scheduleFlushLocked()
			return nil
		}
	}
	return ErrPowerUpNotFound
}

// AddExam appends a new exam with a generated id.
func (s *Store) AddExam(title, subject, examDate, examTime, location, notes string) (models.Exam, error) {
	if title == "" || examDate == "" {
		return models.Exam{}, ErrInvalidExam
	}
	e := models.Exam{
		ID:        primitive.NewObjectID().Hex(),
		Title:     title,
		Subject:   subject,
		ExamDate:  examDate,
		ExamTime:  examTime,
		Location:  location,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.exams = append(s.exams, e)
	s.scheduleFlushLocked()
	s.mu.Unlock()
	return e, nil
}

// DeleteExam removes by id.
func (s *Store) DeleteExam(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.exams {
		if s.exams[i].ID == id {
			s.exams = append(s.exams[:i], s.exams[i+1:]...)
			s.scheduleFlushLocked()
			return nil
		}
	}
	return ErrExamNotFound
}

// ReplaceTimetable rewrites the whole weekly session collection in one batch.
func (s *Store) ReplaceTimetable(sessions []models.TimetableSession) {
	s.mu.Lock()
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = primitive.NewObjectID().Hex()
		}
		sessions[i].UserID = s.uid
	}
	s.timetable = sessions
	s.scheduleFlushLocked()
	s.mu.Unlock()
}

// TouchLogin applies the consecutive-day streak rule and stamps the login
// time. Unlocks the week-long streak achievement at seven days.
func (s *Store) TouchLogin(now time.Time) {
	s.mu.Lock()
	s.streak = game.NextStreak(s.lastLogin, now, s.streak)
	s.lastLogin = now
	var events []models.GamificationEvent
	if s.streak >= 7 {
		events = s.unlockLocked(models.AchievementStreak7)
	}
	s.scheduleFlushLocked()
	s.mu.Unlock()
	s.emit(events)
}

// Flush synchronously writes the full current snapshot, waiting for any
// in-flight background save first. Unlike the background saves this surfaces
// the gateway error to the caller.
func (s *Store) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.mu.Lock()
	if s.uid == "" {
		s.mu.Unlock()
		return ErrNoIdentity
	}
	uid := s.uid
	snap := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()
	return s.gw.SaveProfile(ctx, uid, snap)
}

// scheduleFlushLocked marks the state dirty and ensures a single background
// writer is draining. Rapid mutations coalesce into one pending save.
func (s *Store) scheduleFlushLocked() {
	if s.uid == "" {
		return
	}
	s.dirty = true
	if s.saving {
		return
	}
	s.saving = true
	go s.saveLoop()
}

// saveLoop writes the latest snapshot until nothing is dirty. Each pass holds
// saveMu from snapshot capture through save completion so direct flushes
// cannot interleave with it. A failed save is retried on the next pass up to
// maxSaveRetries, then dropped with a log line; the in-memory state is already
// applied either way.
func (s *Store) saveLoop() {
	for {
		s.saveMu.Lock()
		s.mu.Lock()
		if !s.dirty || s.uid == "" {
			s.saving = false
			s.mu.Unlock()
			s.saveMu.Unlock()
			return
		}
		s.dirty = false
		uid := s.uid
		snap := s.snapshotLocked()
		s.mu.Unlock()

		err := s.gw.SaveProfile(context.Background(), uid, snap)
		s.saveMu.Unlock()

		s.mu.Lock()
		if err != nil {
			s.saveFails++
			log.Printf("store: save failed for %s (attempt %d): %v", uid, s.saveFails, err)
			if s.saveFails <= maxSaveRetries {
				s.dirty = true
				s.mu.Unlock()
				time.Sleep(saveRetryDelay)
				continue
			}
			log.Printf("store: dropping unsaved state for %s after %d attempts", uid, s.saveFails)
			s.saveFails = 0
			s.mu.Unlock()
			continue
		}
		s.saveFails = 0
		s.mu.Unlock()
	}
}

func (s *Store) missionIndexLocked(id string) int {
	for i := range s.missions {
		if s.missions[i].ID == id {
			return i
		}
	}
	return -1
}

// emit pushes events to the notifier outside the store lock.
func (s *Store) emit(events []models.GamificationEvent) {
	for _, e := range events {
		s.notifier.Notify(e)
	}
}
