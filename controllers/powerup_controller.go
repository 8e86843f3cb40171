package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyquest/game"
	"studyquest/models"
)

// powerUpView pairs a power-up with its computed readiness.
type powerUpView struct {
	models.PowerUp
	Ready bool `json:"ready"`
}

// ListPowerUps returns the user's power-ups with cooldown state resolved.
func (g *GameController) ListPowerUps(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	now := time.Now()
	powerUps := s.State().PowerUps
	views := make([]powerUpView, 0, len(powerUps))
	for _, p := range powerUps {
		views = append(views, powerUpView{
			PowerUp: p,
			Ready:   !p.Active && game.CooldownElapsed(p.LastUsed, p.Cooldown, now),
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"powerUps": views})
}

// ActivatePowerUp gates on the usability precondition (not active, cooldown
// elapsed) and then activates. The store itself activates unconditionally, so
// the gate lives here at the entry point.
func (g *GameController) ActivatePowerUp(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	id := ctx.Param("id")

	now := time.Now()
	for _, p := range s.State().PowerUps {
		if p.ID != id {
			continue
		}
		if p.Active || !game.CooldownElapsed(p.LastUsed, p.Cooldown, now) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Power-up is not ready"})
			return
		}
		if err := s.ActivatePowerUp(id); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "Power-up activated"})
		return
	}
	ctx.JSON(http.StatusNotFound, gin.H{"error": "Power-up not found"})
}
