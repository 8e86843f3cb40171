package utils

import (
	"context"
	"log"
	"time"

	"studyquest/db"
	"studyquest/models"
)

// PopulateTestUsers inserts sample profiles for local development.
func PopulateTestUsers(ctx context.Context, database *db.Database) {
	users := []models.UserProfile{
		{
			UID:           "seed-alice",
			Username:      "alice",
			Email:         "alice@example.com",
			DisplayName:   "Alice Johnson",
			XP:            1250,
			Level:         13,
			Streak:        9,
			Achievements:  models.DefaultAchievements(),
			PowerUps:      models.DefaultPowerUps(),
			CreatedAt:     time.Now(),
			LastLoginDate: time.Now(),
			IsOnboarded:   true,
		},
		{
			UID:           "seed-bob",
			Username:      "bob",
			Email:         "bob@example.com",
			DisplayName:   "Bob Smith",
			XP:            740,
			Level:         8,
			Streak:        3,
			Achievements:  models.DefaultAchievements(),
			PowerUps:      models.DefaultPowerUps(),
			CreatedAt:     time.Now(),
			LastLoginDate: time.Now(),
			IsOnboarded:   true,
		},
		{
			UID:           "seed-carol",
			Username:      "carol",
			Email:         "carol@example.com",
			DisplayName:   "Carol Davis",
			XP:            310,
			Level:         4,
			Streak:        1,
			Achievements:  models.DefaultAchievements(),
			PowerUps:      models.DefaultPowerUps(),
			CreatedAt:     time.Now(),
			LastLoginDate: time.Now(),
			IsOnboarded:   true,
		},
	}

	for _, u := range users {
		if _, err := database.CreateProfile(ctx, u); err != nil {
			log.Printf("Failed to seed user %s: %v", u.UID, err)
		}
	}
}
