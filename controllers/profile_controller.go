package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"studyquest/structs"
)

// GetProfile returns the stored profile document for the signed-in user,
// merged with the live in-memory counters so a pending flush is not visible as
// stale data.
func (g *GameController) GetProfile(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := g.DB.LoadProfile(ctx, uid)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if profile == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if s, err := g.Stores.Store(ctx, uid); err == nil {
		state := s.State()
		profile.XP = state.XP
		profile.Level = state.Level
		profile.Streak = state.Streak
		profile.Missions = state.Missions
		profile.Exams = state.Exams
		profile.Timetable = state.Timetable
		profile.PowerUps = state.PowerUps
		profile.Achievements = state.Achievements
	}

	ctx.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile applies identity-level fields (display name, onboarding flag)
// directly to the document; game state is never writable through here.
func (g *GameController) UpdateProfile(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request structs.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	fields := bson.M{}
	if request.DisplayName != nil {
		fields["displayName"] = *request.DisplayName
	}
	if request.IsOnboarded != nil {
		fields["isOnboarded"] = *request.IsOnboarded
	}
	if len(fields) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := g.DB.UpdateProfileFields(ctx, uid, fields); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// DeleteProfile releases the live store and removes the user document.
func (g *GameController) DeleteProfile(ctx *gin.Context) {
	uid := ctx.GetString("uid")
	if uid == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	g.Stores.Release(ctx, uid)
	if err := g.DB.DeleteProfile(ctx, uid); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete profile"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Profile deleted"})
}
