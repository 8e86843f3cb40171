package models

import (
	"time"
)

// Achievement is a one-way milestone: once Unlocked it never reverts.
type Achievement struct {
	ID          string     `bson:"id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description" json:"description"`
	Icon        string     `bson:"icon" json:"icon"`
	Unlocked    bool       `bson:"unlocked" json:"unlocked"`
	UnlockedAt  *time.Time `bson:"unlockedAt,omitempty" json:"unlockedAt,omitempty"`
	Progress    int        `bson:"progress,omitempty" json:"progress,omitempty"`
	MaxProgress int        `bson:"maxProgress,omitempty" json:"maxProgress,omitempty"`
}

// Well-known achievement ids referenced by the store's unlock rules.
const (
	AchievementFirstMission = "first-mission"
	AchievementStreak7      = "streak-7"
	AchievementLevel10      = "level-10"
	AchievementXP1000       = "xp-1000"
)

// DefaultAchievements is the locked set seeded into every new profile.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			ID:          AchievementFirstMission,
			Name:        "First Steps",
			Description: "Complete your first mission",
			Icon:        "🎯",
		},
		{
			ID:          AchievementStreak7,
			Name:        "Week Warrior",
			Description: "Maintain a 7-day streak",
			Icon:        "🔥",
		},
		{
			ID:          AchievementLevel10,
			Name:        "Scholar",
			Description: "Reach level 10",
			Icon:        "🎓",
		},
		{
			ID:          AchievementXP1000,
			Name:        "Knowledge Seeker",
			Description: "Earn 1000 XP",
			Icon:        "⭐",
		},
	}
}
