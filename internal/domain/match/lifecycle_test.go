package match_test

import (
	"errors"
	"testing"

	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

var allStatuses = []match.Status{
	match.StatusPending,
	match.StatusInterview,
	match.StatusAccepted,
	match.StatusDeclined,
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, err := match.ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, bad := range []string{"", "PENDING", " pending", "hired"} {
		if _, err := match.ParseStatus(bad); err == nil {
			t.Errorf("ParseStatus(%q) expected error", bad)
		}
	}
}

// ── IsTransitionAllowed ────────────────────────────────────────────────────

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct{ from, to match.Status }{
		{match.StatusPending, match.StatusAccepted},
		{match.StatusPending, match.StatusDeclined},
		{match.StatusPending, match.StatusInterview},
		{match.StatusInterview, match.StatusAccepted},
		{match.StatusInterview, match.StatusDeclined},
	}
	for _, c := range cases {
		if !match.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	for _, from := range []match.Status{match.StatusAccepted, match.StatusDeclined} {
		if !match.IsTerminal(from) {
			t.Errorf("IsTerminal(%s) should be true", from)
		}
		for _, to := range allStatuses {
			if match.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_BackwardsAndSelf(t *testing.T) {
	cases := []struct{ from, to match.Status }{
		{match.StatusInterview, match.StatusPending},
		{match.StatusAccepted, match.StatusPending},
		{match.StatusPending, match.StatusPending},
		{match.StatusInterview, match.StatusInterview},
	}
	for _, c := range cases {
		if match.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

// ── CheckTransition ────────────────────────────────────────────────────────

func TestCheckTransition_Actor(t *testing.T) {
	owner := uuid.New()

	err := match.CheckTransition(match.Actor{ID: owner, Role: match.RoleOwner}, owner, match.StatusPending, match.StatusAccepted)
	if err != nil {
		t.Fatalf("owner move: unexpected err %v", err)
	}

	err = match.CheckTransition(match.Actor{ID: uuid.New(), Role: match.RoleOwner}, owner, match.StatusPending, match.StatusAccepted)
	if !errors.Is(err, match.ErrForbidden) {
		t.Fatalf("other owner: expected ErrForbidden, got %v", err)
	}

	err = match.CheckTransition(match.Actor{ID: owner, Role: match.RoleSeeker}, owner, match.StatusPending, match.StatusAccepted)
	if !errors.Is(err, match.ErrForbidden) {
		t.Fatalf("seeker role: expected ErrForbidden, got %v", err)
	}

	err = match.CheckTransition(match.Actor{ID: owner, Role: match.RoleOwner}, owner, match.StatusAccepted, match.StatusPending)
	if !errors.Is(err, match.ErrInvalidTransition) {
		t.Fatalf("accepted → pending: expected ErrInvalidTransition, got %v", err)
	}
}
