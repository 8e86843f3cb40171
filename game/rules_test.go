package game

import (
	"testing"
	"time"

	"studyquest/models"
)

func TestMissionXP(t *testing.T) {
	cases := []struct {
		duration int
		priority models.Priority
		want     int
	}{
		{30, models.PriorityMedium, 60},
		{30, models.PriorityHigh, 90},
		{25, models.PriorityLow, 40},
		{45, models.PriorityMedium, 90},
		{1, models.PriorityLow, 2},
		{1, models.PriorityHigh, 3},
	}
	for _, c := range cases {
		got, err := MissionXP(c.duration, c.priority)
		if err != nil {
			t.Fatalf("MissionXP(%d, %s): %v", c.duration, c.priority, err)
		}
		if got != c.want {
			t.Errorf("MissionXP(%d, %s) = %d, want %d", c.duration, c.priority, got, c.want)
		}
	}
}

func TestMissionXPInvalidPriority(t *testing.T) {
	if _, err := MissionXP(30, models.Priority("urgent")); err == nil {
		t.Error("expected error for invalid priority")
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{999, 10},
		{1000, 11},
		{-1, 0},
		{-100, 0},
		{-101, -1},
	}
	for _, c := range cases {
		if got := LevelForXP(c.xp); got != c.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestXPProgress(t *testing.T) {
	cases := []struct {
		xp   int
		want float64
	}{
		{0, 0},
		{50, 0.5},
		{99, 0.99},
		{100, 0},
		{250, 0.5},
	}
	for _, c := range cases {
		if got := XPProgress(c.xp); got != c.want {
			t.Errorf("XPProgress(%d) = %v, want %v", c.xp, got, c.want)
		}
	}
}

func TestCooldownElapsed(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	if !CooldownElapsed(nil, 12, now) {
		t.Error("never-used power-up should be off cooldown")
	}

	recent := now.Add(-1 * time.Hour)
	if CooldownElapsed(&recent, 12, now) {
		t.Error("power-up used 1h ago with a 12h cooldown should still be cooling down")
	}

	old := now.Add(-13 * time.Hour)
	if !CooldownElapsed(&old, 12, now) {
		t.Error("power-up used 13h ago with a 12h cooldown should be ready")
	}

	exact := now.Add(-12 * time.Hour)
	if CooldownElapsed(&exact, 12, now) {
		t.Error("cooldown requires strictly more than the cooldown window")
	}
}

func TestOverdue(t *testing.T) {
	now := time.Now()
	if Overdue(now.Add(time.Minute), now) {
		t.Error("future deadline reported overdue")
	}
	if !Overdue(now.Add(-time.Minute), now) {
		t.Error("past deadline not reported overdue")
	}
	if Overdue(now, now) {
		t.Error("deadline at exactly now should not be overdue")
	}
}

func TestTimeRemainingSeconds(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	m := models.Mission{Duration: 30}
	if got := TimeRemainingSeconds(m, now); got != 1800 {
		t.Errorf("inactive timer, no snapshot: got %d, want 1800", got)
	}

	remaining := 10
	m.TimeRemaining = &remaining
	if got := TimeRemainingSeconds(m, now); got != 600 {
		t.Errorf("inactive timer with snapshot: got %d, want 600", got)
	}

	start := now.Add(-4 * time.Minute)
	m.TimerActive = true
	m.TimerStartTime = &start
	if got := TimeRemainingSeconds(m, now); got != 360 {
		t.Errorf("active timer: got %d, want 360", got)
	}

	longAgo := now.Add(-time.Hour)
	m.TimerStartTime = &longAgo
	if got := TimeRemainingSeconds(m, now); got != 0 {
		t.Errorf("exhausted timer: got %d, want 0", got)
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name      string
		lastLogin time.Time
		current   int
		want      int
	}{
		{"first login", time.Time{}, 0, 1},
		{"same day", now.Add(-2 * time.Hour), 3, 3},
		{"next day", now.Add(-24 * time.Hour), 3, 4},
		{"two day gap", now.Add(-72 * time.Hour), 9, 1},
	}
	for _, c := range cases {
		if got := NextStreak(c.lastLogin, now, c.current); got != c.want {
			t.Errorf("%s: NextStreak = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestExamCountdown(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		date string
		time string
		want string
	}{
		{"2025-03-04", "14:30", "3d 2h"},
		{"2025-03-01", "16:12", "4h 12m"},
		{"2025-03-01", "12:45", "45m"},
		{"2025-02-28", "09:00", "Past"},
	}
	for _, c := range cases {
		got, err := ExamCountdown(c.date, c.time, now)
		if err != nil {
			t.Fatalf("ExamCountdown(%s %s): %v", c.date, c.time, err)
		}
		if got != c.want {
			t.Errorf("ExamCountdown(%s %s) = %q, want %q", c.date, c.time, got, c.want)
		}
	}

	if _, err := ExamCountdown("tomorrow", "noon", now); err == nil {
		t.Error("expected parse error for bad date/time strings")
	}
}

func TestOverduePenalty(t *testing.T) {
	if got := OverduePenalty(60); got != 6 {
		t.Errorf("OverduePenalty(60) = %d, want 6", got)
	}
	if got := OverduePenalty(45); got != 5 {
		t.Errorf("OverduePenalty(45) = %d, want 5", got)
	}
}
