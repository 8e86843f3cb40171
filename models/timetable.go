package models

// TimetableSession is a weekly-recurring slot, not a date-specific event.
// The whole collection is rewritten on every timetable change.
type TimetableSession struct {
	ID        string `bson:"id" json:"id"`
	Title     string `bson:"title" json:"title"`
	Subject   string `bson:"subject" json:"subject"`
	StartTime string `bson:"startTime" json:"startTime"` // "15:04"
	EndTime   string `bson:"endTime" json:"endTime"`     // "15:04"
	Day       string `bson:"day" json:"day"`             // "Monday".."Sunday"
	UserID    string `bson:"userId" json:"userId"`
}

// Weekdays are the valid values for TimetableSession.Day.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
