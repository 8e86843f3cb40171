package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyquest/store"
)

// ListAchievements returns the user's achievements, locked and unlocked.
func (g *GameController) ListAchievements(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"achievements": s.State().Achievements})
}

// UnlockAchievement flips an achievement to unlocked. Unlocking is monotonic;
// repeating the call changes nothing.
func (g *GameController) UnlockAchievement(ctx *gin.Context) {
	s := g.userStore(ctx)
	if s == nil {
		return
	}
	if err := s.UnlockAchievement(ctx.Param("id")); err != nil {
		if errors.Is(err, store.ErrAchievementNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Achievement not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Achievement unlocked"})
}
