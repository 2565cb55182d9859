// Match status graph:
//
//	PENDING ──► INTERVIEW ──► ACCEPTED
//	   │            │
//	   │            └───────► DECLINED
//	   ├──────────────────────► ACCEPTED
//	   └──────────────────────► DECLINED
//
// ACCEPTED and DECLINED are terminal. Only the post's shop owner drives moves.
package match

import (
	"fmt"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInterview Status = "interview"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
)

var validTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusDeclined, StatusInterview},
	StatusInterview: {StatusAccepted, StatusDeclined},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusInterview, StatusAccepted, StatusDeclined:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminal(s Status) bool {
	return s == StatusAccepted || s == StatusDeclined
}

// CheckTransition validates that actor may move a match on a post owned by
// postOwner from one status to another.
func CheckTransition(actor Actor, postOwner uuid.UUID, from, to Status) error {
	if actor.Role != RoleOwner || actor.ID == uuid.Nil || actor.ID != postOwner {
		return ErrForbidden
	}
	if !IsTransitionAllowed(from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}
