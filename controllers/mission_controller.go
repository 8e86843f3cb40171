package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyquest/models"
	"studyquest/store"
	"studyquest/structs"
)

// ListMissions returns the user's missions.
func (g *GameController) ListMissions(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"missions": s.State().Missions})
}

// CreateMission validates the payload, parses the deadline and appends a new
// mission with its XP value frozen at creation.
func (g *GameController) CreateMission(ctx *gin.Context) {
	var request structs.CreateMissionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	deadline, err := time.Parse(time.RFC3339, request.Deadline)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "deadline must be RFC 3339"})
		return
	}

	s := g.userStore(ctx)
	if s == nil {
		return
	}
	mission, err := s.AddMission(request.Title, request.Subject, request.Duration, deadline, models.Priority(request.Priority))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"mission": mission})
}

// CompleteMission awards the mission's XP exactly once.
func (g *GameController) CompleteMission(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.CompleteMission(ctx.Param("id")); err != nil {
		missionError(ctx, err)
		return
	}
	state := s.State()
	ctx.JSON(http.StatusOK, gin.H{"xp": state.XP, "level": state.Level})
}

// DeleteMission removes a mission by id.
func (g *GameController) DeleteMission(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.DeleteMission(ctx.Param("id")); err != nil {
		missionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Mission deleted"})
}

// StartTimer starts or resumes the mission's work timer.
func (g *GameController) StartTimer(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.StartTimer(ctx.Param("id")); err != nil {
		missionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Timer started"})
}

// StopTimer halts the timer and banks the remaining minutes.
func (g *GameController) StopTimer(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.StopTimer(ctx.Param("id")); err != nil {
		missionError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Timer stopped"})
}

func missionError(ctx *gin.Context, err error) {
	if errors.Is(err, store.ErrMissionNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Mission not found"})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
