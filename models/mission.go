package models

import (
	"time"
)

// Priority weights a mission's XP reward.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Mission is a user-defined study task. XPValue is frozen at creation and never
// recomputed. Once Completed is set the mission is terminal: timer fields must
// not be mutated again.
type Mission struct {
	ID             string     `bson:"id" json:"id"`
	Title          string     `bson:"title" json:"title"`
	Subject        string     `bson:"subject" json:"subject"`
	Duration       int        `bson:"duration" json:"duration"` // minutes
	Deadline       time.Time  `bson:"deadline" json:"deadline"`
	XPValue        int        `bson:"xpValue" json:"xpValue"`
	Completed      bool       `bson:"completed" json:"completed"`
	CompletedAt    *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	Priority       Priority   `bson:"priority" json:"priority"`
	TimerActive    bool       `bson:"timerActive" json:"timerActive"`
	TimerStartTime *time.Time `bson:"timerStartTime,omitempty" json:"timerStartTime,omitempty"`
	TimeRemaining  *int       `bson:"timeRemaining,omitempty" json:"timeRemaining,omitempty"` // minutes
	Overdue        bool       `bson:"overdue" json:"overdue"`
}
