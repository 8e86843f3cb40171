package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyquest/game"
	"studyquest/models"
	"studyquest/store"
	"studyquest/structs"
)

// examView pairs an exam with its formatted countdown.
type examView struct {
	models.Exam
	Countdown string `json:"countdown"`
}

// ListExams returns the user's exams with a live countdown per entry.
func (g *GameController) ListExams(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	now := time.Now()
	exams := s.State().Exams
	views := make([]examView, 0, len(exams))
	for _, e := range exams {
		countdown, err := game.ExamCountdown(e.ExamDate, e.ExamTime, now)
		if err != nil {
			countdown = ""
		}
		views = append(views, examView{Exam: e, Countdown: countdown})
	}
	ctx.JSON(http.StatusOK, gin.H{"exams": views})
}

// CreateExam validates the date/time strings and appends a new exam.
func (g *GameController) CreateExam(ctx *gin.Context) {
	var request structs.CreateExamRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	if _, err := game.ExamCountdown(request.ExamDate, request.ExamTime, time.Now()); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "examDate must be YYYY-MM-DD and examTime HH:MM"})
		return
	}

	s := g.userStore(ctx)
	if s == nil {
		return
	}
	exam, err := s.AddExam(request.Title, request.Subject, request.ExamDate, request.ExamTime, request.Location, request.Notes)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"exam": exam})
}

// DeleteExam removes an exam by id.
func (g *GameController) DeleteExam(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.DeleteExam(ctx.Param("id")); err != nil {
		if errors.Is(err, store.ErrExamNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Exam deleted"})
}
