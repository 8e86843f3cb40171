// Package game holds the pure gamification rules: XP and level formulas,
// cooldown and deadline checks, timer arithmetic and countdown formatting.
// Nothing here touches storage or does I/O.
package game

import (
	"fmt"
	"math"
	"time"

	"studyquest/models"
)

// BaseXPPerMinute is the pre-multiplier XP rate for missions.
const BaseXPPerMinute = 2

// XPPerLevel is the XP span of a single level.
const XPPerLevel = 100

// OverduePenaltyRate is the fraction of a mission's XP lost when it goes overdue.
const OverduePenaltyRate = 0.1

func priorityMultiplier(p models.Priority) (float64, error) {
	switch p {
	case models.PriorityLow:
		return 0.8, nil
	case models.PriorityMedium:
		return 1.0, nil
	case models.PriorityHigh:
		return 1.5, nil
	default:
		return 0, fmt.Errorf("invalid priority: %q", p)
	}
}

// MissionXP computes a mission's XP reward from its duration and priority.
// The result is frozen into the mission at creation time and never recomputed.
func MissionXP(durationMinutes int, p models.Priority) (int, error) {
	mult, err := priorityMultiplier(p)
	if err != nil {
		return 0, err
	}
	base := float64(durationMinutes * BaseXPPerMinute)
	return int(math.Round(base * mult)), nil
}

// OverduePenalty is the XP deducted when a mission passes its deadline.
func OverduePenalty(xpValue int) int {
	return int(math.Round(float64(xpValue) * OverduePenaltyRate))
}

// LevelForXP derives the level from total XP: floor(xp/100)+1. XP is never
// clamped, so negative XP yields a level at or below zero; that is the
// documented behavior, not an accident. Uses mathematical floor, not
// truncation, so the formula holds for negative values too.
func LevelForXP(xp int) int {
	q := xp / XPPerLevel
	if xp%XPPerLevel < 0 {
		q--
	}
	return q + 1
}

// XPProgress is the fraction of the current level already earned, for display.
func XPProgress(xp int) float64 {
	mod := xp % XPPerLevel
	if mod < 0 {
		mod += XPPerLevel
	}
	return float64(mod) / float64(XPPerLevel)
}

// CooldownElapsed reports whether a power-up's cooldown has passed. A nil
// lastUsed means the power-up has never been used.
func CooldownElapsed(lastUsed *time.Time, cooldownHours int, now time.Time) bool {
	if lastUsed == nil {
		return true
	}
	return now.Sub(*lastUsed) > time.Duration(cooldownHours)*time.Hour
}

// Overdue reports whether a deadline has passed.
func Overdue(deadline, now time.Time) bool {
	return now.After(deadline)
}

// TimeRemainingSeconds returns the seconds left on a mission's work timer.
// With the timer stopped it is the stored remainder (or the full duration if
// the timer was never started); with the timer running, the elapsed time since
// start is subtracted, floored at zero.
func TimeRemainingSeconds(m models.Mission, now time.Time) int {
	base := m.Duration
	if m.TimeRemaining != nil {
		base = *m.TimeRemaining
	}
	total := base * 60
	if !m.TimerActive || m.TimerStartTime == nil {
		return total
	}
	elapsed := int(now.Sub(*m.TimerStartTime).Seconds())
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}

// NextStreak applies the consecutive-day rule on login: a login on the day
// after the last one extends the streak, a same-day login keeps it, and a gap
// (or a first login) restarts it at 1.
func NextStreak(lastLogin, now time.Time, current int) int {
	if lastLogin.IsZero() {
		return 1
	}
	last := lastLogin.Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	switch days := int(today.Sub(last).Hours() / 24); {
	case days == 0:
		return current
	case days == 1:
		return current + 1
	default:
		return 1
	}
}

// ExamCountdown formats the time until an exam's date and time. Returns "Past"
// once the moment has gone by and an error when the stored strings do not parse.
func ExamCountdown(examDate, examTime string, now time.Time) (string, error) {
	target, err := time.ParseInLocation("2006-01-02 15:04", examDate+" "+examTime, now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid exam date/time %q %q: %w", examDate, examTime, err)
	}
	remaining := target.Sub(now)
	if remaining <= 0 {
		return "Past", nil
	}
	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours), nil
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes), nil
	default:
		return fmt.Sprintf("%dm", minutes), nil
	}
}
