package models

import (
	"time"
)

// PowerUp is a named ability with a cooldown. It is usable only while Active is
// false and the cooldown has elapsed since LastUsed. Activation stamps LastUsed;
// nothing in the core ever clears Active back to false.
type PowerUp struct {
	ID          string     `bson:"id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description" json:"description"`
	Effect      string     `bson:"effect" json:"effect"`
	Cooldown    int        `bson:"cooldown" json:"cooldown"` // hours
	LastUsed    *time.Time `bson:"lastUsed,omitempty" json:"lastUsed,omitempty"`
	Active      bool       `bson:"active" json:"active"`
}

// DefaultPowerUps is the starting loadout granted to every new profile.
func DefaultPowerUps() []PowerUp {
	return []PowerUp{
		{
			ID:          "study-buddy",
			Name:        "Study Buddy",
			Description: "Get a study partner for 30 minutes - reduces mission duration by 25%",
			Effect:      "duration-reduction",
			Cooldown:    12,
		},
		{
			ID:          "xp-boost",
			Name:        "XP Boost",
			Description: "Double XP for next 3 missions",
			Effect:      "xp-boost",
			Cooldown:    12,
		},
		{
			ID:          "time-freeze",
			Name:        "Time Freeze",
			Description: "Extend deadline by 24 hours",
			Effect:      "deadline-extension",
			Cooldown:    48,
		},
	}
}
