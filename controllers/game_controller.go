package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studyquest/db"
	"studyquest/game"
	"studyquest/store"
	"studyquest/structs"
)

// GameController serves the authenticated game-state surface. Every handler
// resolves the caller's store through the manager; the store owns all mutation
// rules, the controller only validates input and shapes responses.
type GameController struct {
	Stores *store.Manager
	DB     *db.Database
}

func NewGameController(stores *store.Manager, database *db.Database) *GameController {
	return &GameController{Stores: stores, DB: database}
}

// userStore resolves the caller's store, responding with an error itself when
// that fails. A nil return means the response has been written.
func (g *GameController) userStore(ctx *gin.Context) *store.Store {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}
	s, err := g.Stores.Store(ctx, uid)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game state"})
		return nil
	}
	return s
}

// GetState returns the full in-memory snapshot for the signed-in user.
func (g *GameController) GetState(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	state := s.State()
	ctx.JSON(http.StatusOK, gin.H{
		"uid":          s.UID(),
		"loading":      s.Loading(),
		"xp":           state.XP,
		"level":        state.Level,
		"streak":       state.Streak,
		"xpProgress":   game.XPProgress(state.XP),
		"missions":     state.Missions,
		"exams":        state.Exams,
		"timetable":    state.Timetable,
		"powerUps":     state.PowerUps,
		"achievements": state.Achievements,
	})
}

// AddXP applies a manual XP adjustment (positive bonus or negative penalty).
func (g *GameController) AddXP(ctx *gin.Context) {
	var request structs.AddXPRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	s.AddXP(request.Amount)
	state := s.State()
	ctx.JSON(http.StatusOK, gin.H{"xp": state.XP, "level": state.Level})
}
