package ws

import (
	"encoding/json"
	"time"

	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

const (
	EventMatchesUpdated     = "matches_updated"
	EventCandidatesUpdated  = "candidates_updated"
	EventMatchStatusChanged = "match_status_changed"
)

type Event struct {
	Type      string     `json:"type"`
	SeekerID  *uuid.UUID `json:"seeker_id,omitempty"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	Status    string     `json:"status,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// Notifier turns recompute and lifecycle notifications into hub messages.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) MatchesUpdated(seekerID uuid.UUID) {
	n.send(UserTopic(seekerID), Event{Type: EventMatchesUpdated, SeekerID: &seekerID})
}

func (n *Notifier) CandidatesUpdated(ownerID, postID uuid.UUID) {
	n.send(UserTopic(ownerID), Event{Type: EventCandidatesUpdated, PostID: &postID})
}

// MatchStatusChanged tells the seeker; the owner made the change and already
// has the result.
func (n *Notifier) MatchStatusChanged(m match.Match) {
	n.send(UserTopic(m.SeekerID), Event{
		Type:     EventMatchStatusChanged,
		SeekerID: &m.SeekerID,
		PostID:   &m.PostID,
		Status:   string(m.Status),
	})
}

func (n *Notifier) send(topic string, evt Event) {
	if n == nil || n.hub == nil {
		return
	}
	evt.Timestamp = n.now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Publish(topic, b)
}
