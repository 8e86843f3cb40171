package store

import (
	"context"
	"errors"

	"studyquest/models"
)

// Gateway is the persistence collaborator the store mirrors itself through.
// Every save is a full-snapshot overwrite of the bound identity's document;
// there are no deltas and no version checks, so the last completed write wins.
// The Mongo implementation lives in the db package; tests inject a fake.
type Gateway interface {
	// LoadProfile fetches the identity's document. A missing document is
	// (nil, nil), not an error.
	LoadProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	// SaveProfile overwrites the mutable fields of an existing document.
	SaveProfile(ctx context.Context, uid string, snap models.Snapshot) error
}

// Notifier receives best-effort gamification events. Implementations must not
// block for long and must swallow their own delivery failures.
type Notifier interface {
	Notify(event models.GamificationEvent)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) Notify(models.GamificationEvent) {}

var (
	ErrMissionNotFound     = errors.New("mission not found")
	ErrExamNotFound        = errors.New("exam not found")
	ErrPowerUpNotFound     = errors.New("power-up not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidMission      = errors.New("invalid mission")
	ErrInvalidExam         = errors.New("invalid exam")
	ErrNoIdentity          = errors.New("no identity bound")
)
