package structs

// CreateMissionRequest carries a new mission. Deadline is RFC 3339.
type CreateMissionRequest struct {
	Title    string `json:"title" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Duration int    `json:"duration" binding:"required,gt=0"`
	Deadline string `json:"deadline" binding:"required"`
	Priority string `json:"priority" binding:"required,oneof=low medium high"`
}

type CreateExamRequest struct {
	Title    string `json:"title" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	ExamDate string `json:"examDate" binding:"required"` // "2006-01-02"
	ExamTime string `json:"examTime" binding:"required"` // "15:04"
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type TimetableSessionInput struct {
	ID        string `json:"id"`
	Title     string `json:"title" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Day       string `json:"day" binding:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
}

// ReplaceTimetableRequest rewrites the whole weekly timetable in one batch.
type ReplaceTimetableRequest struct {
	Sessions []TimetableSessionInput `json:"sessions" binding:"required,dive"`
}

type AddXPRequest struct {
	Amount int `json:"amount" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
	IsOnboarded *bool   `json:"isOnboarded"`
}
