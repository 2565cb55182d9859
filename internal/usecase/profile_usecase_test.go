package usecase

import (
	"context"
	"errors"
	"testing"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"

	"github.com/google/uuid"
)

func TestUpsertSeeker_StoresAndEnqueues(t *testing.T) {
	f := newFixture(t)
	q := &recordingQueue{}
	uc := NewProfileUsecase(f.store, f.store, f.store, q)
	actor := match.Actor{ID: uuid.New(), Role: match.RoleSeeker}

	s, err := uc.UpsertSeeker(context.Background(), actor, SeekerInput{
		Location:      &profile.Coordinates{Latitude: 13.75, Longitude: 100.5},
		AvailableDays: []string{"mon", "Wed"},
		Skills:        []string{" Cook ", "cook", "Cashier"},
		MinWage:       ptr(45.0),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if s.AvailableDays.Len() != 2 {
		t.Fatalf("expected two days, got %v", s.AvailableDays.Names())
	}
	if len(s.Skills) != 2 || s.Skills[0] != "cook" {
		t.Fatalf("skills not normalized: %v", s.Skills)
	}
	if len(q.seekers) != 1 || q.seekers[0] != actor.ID {
		t.Fatalf("recompute not enqueued: %v", q.seekers)
	}

	stored, err := uc.GetSeeker(context.Background(), actor)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.MinWage == nil || *stored.MinWage != 45 {
		t.Fatalf("min wage lost: %v", stored.MinWage)
	}
}

func TestUpsertSeeker_Rejects(t *testing.T) {
	f := newFixture(t)
	q := &recordingQueue{}
	uc := NewProfileUsecase(f.store, f.store, f.store, q)
	seeker := match.Actor{ID: uuid.New(), Role: match.RoleSeeker}
	ctx := context.Background()

	cases := []struct {
		name  string
		actor match.Actor
		in    SeekerInput
		want  error
	}{
		{"owner role", f.owner, SeekerInput{}, ErrForbidden},
		{"anonymous", match.Actor{}, SeekerInput{}, ErrUnauthorized},
		{"bad weekday", seeker, SeekerInput{AvailableDays: []string{"funday"}}, ErrInvalidInput},
		{"bad latitude", seeker, SeekerInput{Location: &profile.Coordinates{Latitude: 91}}, ErrInvalidInput},
		{"negative wage", seeker, SeekerInput{MinWage: ptr(-1.0)}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.UpsertSeeker(ctx, tc.actor, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(q.seekers) != 0 {
		t.Fatalf("rejected input enqueued a recompute")
	}
}

func TestCreatePost_RequiresShopOwner(t *testing.T) {
	f := newFixture(t)
	q := &recordingQueue{}
	uc := NewProfileUsecase(f.store, f.store, f.store, q)
	ctx := context.Background()
	in := PostInput{ShopID: f.shop.ID, Title: "Dishwasher", Wage: 55, RequiredDays: []string{"sat"}}

	other := match.Actor{ID: uuid.New(), Role: match.RoleOwner}
	if _, err := uc.CreatePost(ctx, other, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	p, err := uc.CreatePost(ctx, f.owner, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.IsOpen || p.Headcount != 1 || p.OwnerID != f.owner.ID {
		t.Fatalf("unexpected post: %+v", p)
	}
	if len(q.posts) != 1 || q.posts[0] != p.ID {
		t.Fatalf("recompute not enqueued: %v", q.posts)
	}

	in.Title = ""
	if _, err := uc.CreatePost(ctx, f.owner, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSetPostOpen_ClosesAndEnqueues(t *testing.T) {
	f := newFixture(t)
	q := &recordingQueue{}
	uc := NewProfileUsecase(f.store, f.store, f.store, q)
	ctx := context.Background()
	p := f.addPost(t, 13.76, 100.51, "cook")

	closed, err := uc.SetPostOpen(ctx, f.owner, p.ID, false)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.IsOpen {
		t.Fatalf("post still open")
	}
	stored, _ := f.store.GetPost(ctx, p.ID)
	if stored.IsOpen {
		t.Fatalf("store not updated")
	}
	if len(q.posts) != 1 {
		t.Fatalf("expected one enqueue, got %d", len(q.posts))
	}

	updated, err := uc.UpdatePost(ctx, f.owner, p.ID, PostInput{Title: "Line cook", Wage: 70})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsOpen {
		t.Fatalf("update reopened a closed post")
	}
}
