package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyquest/models"
	"studyquest/structs"
)

// GetTimetable returns the user's weekly sessions.
func (g *GameController) GetTimetable(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"timetable": s.State().Timetable})
}

// ReplaceTimetable rewrites the whole session collection in one batch write;
// there are no per-session updates.
func (g *GameController) ReplaceTimetable(ctx *gin.Context) {
	var request structs.ReplaceTimetableRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	s := g.userStore(ctx)
	if s == nil {
		return
	}
	sessions := make([]models.TimetableSession, len(request.Sessions))
	for i, in := range request.Sessions {
		sessions[i] = models.TimetableSession{
			ID:        in.ID,
			Title:     in.Title,
			Subject:   in.Subject,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Day:       in.Day,
		}
	}
	s.ReplaceTimetable(sessions)
	ctx.JSON(http.StatusOK, gin.H{"timetable": s.State().Timetable})
}
