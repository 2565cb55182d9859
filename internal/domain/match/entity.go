package match

import (
	"errors"
	"time"

	"parttime-match/internal/domain/matching"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("match not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStorageConflict   = errors.New("concurrent match update")
	ErrForbidden         = errors.New("actor may not change this match")
)

// Match is the system-computed compatibility record of one seeker and one post.
// At most one exists per (SeekerID, PostID).
type Match struct {
	SeekerID     uuid.UUID
	PostID       uuid.UUID
	OverallScore float64
	Factors      matching.Factors
	Status       Status
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Upsert carries a freshly computed score. It never carries a status.
type Upsert struct {
	SeekerID uuid.UUID
	PostID   uuid.UUID
	Score    float64
	Factors  matching.Factors
	ScoredAt time.Time
}

// StatusChange is a compare-and-write request against a match's version.
type StatusChange struct {
	SeekerID        uuid.UUID
	PostID          uuid.UUID
	ExpectedVersion int64
	From            Status
	To              Status
	ActorID         uuid.UUID
	At              time.Time
}

// HistoryEntry is one line of a match's status history.
type HistoryEntry struct {
	From    Status    `json:"from"`
	To      Status    `json:"to"`
	ActorID uuid.UUID `json:"actor_id"`
	At      time.Time `json:"at"`
}

type Role string

const (
	RoleSeeker Role = "seeker"
	RoleOwner  Role = "owner"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSeeker, RoleOwner:
		return r, nil
	}
	return "", errors.New("unknown role")
}

// Actor is the authenticated principal performing an action.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
