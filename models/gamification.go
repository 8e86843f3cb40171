package models

import (
	"time"
)

// GamificationEvent is pushed to connected clients over the notification hub.
// Delivery is best effort; a dropped event is logged and forgotten.
type GamificationEvent struct {
	Type      string    `json:"type"` // "mission_overdue", "achievement_unlocked", "level_up"
	UserID    string    `json:"userId"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message,omitempty"`
	Points    int       `json:"points,omitempty"`
	NewXP     int       `json:"newXP,omitempty"`
	NewLevel  int       `json:"newLevel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventMissionOverdue      = "mission_overdue"
	EventAchievementUnlocked = "achievement_unlocked"
	EventLevelUp             = "level_up"
)
