package models

import (
	"time"
)

// UserProfile is the single document stored per identity. All list fields are
// complete arrays; a save overwrites them wholesale.
type UserProfile struct {
	UID           string             `bson:"uid" json:"uid"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	DisplayName   string             `bson:"displayName" json:"displayName"`
	XP            int                `bson:"xp" json:"xp"`
	Level         int                `bson:"level" json:"level"`
	Streak        int                `bson:"streak" json:"streak"`
	Achievements  []Achievement      `bson:"achievements" json:"achievements"`
	PowerUps      []PowerUp          `bson:"powerUps" json:"powerUps"`
	Missions      []Mission          `bson:"missions" json:"missions"`
	Exams         []Exam             `bson:"exams" json:"exams"`
	Timetable     []TimetableSession `bson:"timetable" json:"timetable"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	LastLoginDate time.Time          `bson:"lastLoginDate" json:"lastLoginDate"`
	IsOnboarded   bool               `bson:"isOnboarded" json:"isOnboarded"`
}

// Snapshot is the mutable slice of a profile written back on every flush.
type Snapshot struct {
	XP            int                `bson:"xp" json:"xp"`
	Level         int                `bson:"level" json:"level"`
	Streak        int                `bson:"streak" json:"streak"`
	PowerUps      []PowerUp          `bson:"powerUps" json:"powerUps"`
	Achievements  []Achievement      `bson:"achievements" json:"achievements"`
	Missions      []Mission          `bson:"missions" json:"missions"`
	Exams         []Exam             `bson:"exams" json:"exams"`
	Timetable     []TimetableSession `bson:"timetable" json:"timetable"`
	LastLoginDate time.Time          `bson:"lastLoginDate" json:"lastLoginDate"`
}

// LeaderboardEntry is the minimal projection returned by the leaderboard query.
type LeaderboardEntry struct {
	UID         string `bson:"uid" json:"uid"`
	DisplayName string `bson:"displayName" json:"displayName"`
	XP          int    `bson:"xp" json:"xp"`
	Level       int    `bson:"level" json:"level"`
	Streak      int    `bson:"streak" json:"streak"`
}
