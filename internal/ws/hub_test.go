package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
	return nil
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.ClientCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_PublishesOnlyToTopicSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil)
	go h.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	ca := NewClient(h, nil, UserTopic(alice))
	cb := NewClient(h, nil, UserTopic(bob))
	h.Register(ca)
	h.Register(cb)
	waitClients(t, h, 2)

	h.Publish(UserTopic(alice), []byte("hello"))
	if got := string(receive(t, ca)); got != "hello" {
		t.Fatalf("unexpected payload %q", got)
	}
	select {
	case msg := <-cb.send:
		t.Fatalf("bob received %q", msg)
	case <-time.After(20 * time.Millisecond):
	}

	h.Unregister(ca)
	waitClients(t, h, 1)
	if _, ok := <-ca.send; ok {
		t.Fatal("unregistered client channel should be closed")
	}
}

func TestHub_DropsSlowClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil)
	go h.Run(ctx)

	topic := UserTopic(uuid.New())
	c := NewClient(h, nil, topic)
	h.Register(c)
	waitClients(t, h, 1)

	for range sendBuffer + 1 {
		h.Publish(topic, []byte("x"))
	}
	waitClients(t, h, 0)
}

func TestNotifier_EventsReachTheRightUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(nil)
	go h.Run(ctx)

	seeker, owner, post := uuid.New(), uuid.New(), uuid.New()
	cs := NewClient(h, nil, UserTopic(seeker))
	co := NewClient(h, nil, UserTopic(owner))
	h.Register(cs)
	h.Register(co)
	waitClients(t, h, 2)

	n := NewNotifier(h)
	n.MatchesUpdated(seeker)
	n.CandidatesUpdated(owner, post)
	n.MatchStatusChanged(match.Match{SeekerID: seeker, PostID: post, Status: match.StatusAccepted})

	var evt Event
	if err := json.Unmarshal(receive(t, cs), &evt); err != nil || evt.Type != EventMatchesUpdated {
		t.Fatalf("unexpected seeker event %+v err=%v", evt, err)
	}
	evt = Event{}
	if err := json.Unmarshal(receive(t, co), &evt); err != nil || evt.Type != EventCandidatesUpdated || *evt.PostID != post {
		t.Fatalf("unexpected owner event %+v err=%v", evt, err)
	}
	evt = Event{}
	if err := json.Unmarshal(receive(t, cs), &evt); err != nil || evt.Type != EventMatchStatusChanged || evt.Status != string(match.StatusAccepted) {
		t.Fatalf("unexpected status event %+v err=%v", evt, err)
	}
}

func TestNotifier_NilHubIsNoop(t *testing.T) {
	var n *Notifier
	n.MatchesUpdated(uuid.New())
	NewNotifier(nil).CandidatesUpdated(uuid.New(), uuid.New())
}
