package models

import (
	"time"
)

// Exam is a purely informational countdown target; it has no completion state
// and is never edited in place.
type Exam struct {
	ID        string    `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Subject   string    `bson:"subject" json:"subject"`
	ExamDate  string    `bson:"examDate" json:"examDate"` // "2006-01-02"
	ExamTime  string    `bson:"examTime" json:"examTime"` // "15:04"
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
