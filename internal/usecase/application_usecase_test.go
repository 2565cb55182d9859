package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

func TestApply(t *testing.T) {
	f := newFixture(t)
	uc := NewApplicationUsecase(f.store, f.store)
	ctx := context.Background()
	p := f.addPost(t, 13.76, 100.51, "cook")
	seeker := match.Actor{ID: uuid.New(), Role: match.RoleSeeker}

	a, err := uc.Apply(ctx, seeker, p.ID, "  I can start Monday ")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if a.Message != "I can start Monday" {
		t.Fatalf("message not trimmed: %q", a.Message)
	}
	if _, err := uc.Apply(ctx, seeker, p.ID, ""); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := uc.Apply(ctx, f.owner, p.ID, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for owner, got %v", err)
	}

	_ = f.store.SetPostOpen(ctx, p.ID, false, time.Now())
	other := match.Actor{ID: uuid.New(), Role: match.RoleSeeker}
	if _, err := uc.Apply(ctx, other, p.ID, ""); !errors.Is(err, ErrPostClosed) {
		t.Fatalf("expected ErrPostClosed, got %v", err)
	}
}

func TestListForPost_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	uc := NewApplicationUsecase(f.store, f.store)
	ctx := context.Background()
	p := f.addPost(t, 13.76, 100.51, "cook")
	seeker := match.Actor{ID: uuid.New(), Role: match.RoleSeeker}
	_, _ = uc.Apply(ctx, seeker, p.ID, "hello")

	got, err := uc.ListForPost(ctx, f.owner, p.ID, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].SeekerID != seeker.ID {
		t.Fatalf("unexpected applications: %+v", got)
	}
	if _, err := uc.ListForPost(ctx, seeker, p.ID, 10, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
