package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const leaderboardSize = 10

// leaderboardRow is one ranked entry in the response.
type leaderboardRow struct {
	Rank        int    `json:"rank"`
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
	CurrentUser bool   `json:"currentUser"`
}

// GetLeaderboard returns the top users by XP descending. This is the only
// cross-user read in the system.
func (g *GameController) GetLeaderboard(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entries, err := g.DB.TopByXP(ctx, leaderboardSize)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, leaderboardRow{
			Rank:        i + 1,
			UID:         e.UID,
			DisplayName: e.DisplayName,
			XP:          e.XP,
			Level:       e.Level,
			Streak:      e.Streak,
			CurrentUser: e.UID == uid,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}
