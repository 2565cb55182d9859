package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"parttime-match/internal/domain/match"

	"github.com/google/uuid"
)

func seedRanked(t *testing.T, f *fixture, seekerID uuid.UUID, scores ...float64) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, 0, len(scores))
	for _, sc := range scores {
		p := f.addPost(t, 13.76, 100.51, "cook")
		if err := f.store.Upsert(context.Background(), match.Upsert{SeekerID: seekerID, PostID: p.ID, Score: sc}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		ids = append(ids, p.ID)
	}
	return ids
}

func TestRank_OrderedAndPaged(t *testing.T) {
	f := newFixture(t)
	s := f.addSeeker(t, 13.75, 100.50, "cook")
	seedRanked(t, f, s.ID, 10, 90, 50, 70, 30)
	uc := NewRecommendationUsecase(f.store, f.store, f.store)

	first, err := uc.Rank(context.Background(), s.ID, 2, 0)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	second, _ := uc.Rank(context.Background(), s.ID, 2, 2)
	third, _ := uc.Rank(context.Background(), s.ID, 2, 4)

	var got []float64
	for _, page := range [][]match.Match{first, second, third} {
		for _, m := range page {
			got = append(got, m.OverallScore)
		}
	}
	want := []float64{90, 70, 50, 30, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("idx %d: expected %v got %v", i, want[i], got[i])
		}
	}
}

func TestRank_ExcludesClosedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addSeeker(t, 13.75, 100.50, "cook")
	ids := seedRanked(t, f, s.ID, 99, 40)
	_ = f.store.SetPostOpen(ctx, ids[0], false, time.Now())

	got, err := NewRecommendationUsecase(f.store, f.store, f.store).Rank(ctx, s.ID, 10, 0)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(got) != 1 || got[0].PostID != ids[1] {
		t.Fatalf("closed post leaked: %+v", got)
	}
}

func TestRank_Validation(t *testing.T) {
	f := newFixture(t)
	uc := NewRecommendationUsecase(f.store, f.store, f.store)
	ctx := context.Background()

	if _, err := uc.Rank(ctx, uuid.New(), 10, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	s := f.addSeeker(t, 13.75, 100.50)
	if _, err := uc.Rank(ctx, s.ID, 10, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestClampRankLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 20},
		{-5, 20},
		{7, 7},
		{50, 50},
		{500, 50},
	}
	for _, tc := range cases {
		if got := clampRankLimit(tc.in); got != tc.want {
			t.Fatalf("clampRankLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestAll_RestartableAndFinite(t *testing.T) {
	f := newFixture(t)
	s := f.addSeeker(t, 13.75, 100.50, "cook")
	seedRanked(t, f, s.ID, 1, 2, 3, 4, 5, 6, 7)
	seq := NewRecommendationUsecase(f.store, f.store, f.store).All(context.Background(), s.ID, 3)

	count := func() int {
		n := 0
		for _, err := range seq {
			if err != nil {
				t.Fatalf("iterate: %v", err)
			}
			n++
		}
		return n
	}
	if a, b := count(), count(); a != 7 || b != 7 {
		t.Fatalf("expected 7 on both passes, got %d and %d", a, b)
	}

	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("early break not honoured")
	}
}

func TestCandidates_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.addSeeker(t, 13.75, 100.50, "cook")
	ids := seedRanked(t, f, s.ID, 80)
	uc := NewRecommendationUsecase(f.store, f.store, f.store)

	got, err := uc.Candidates(ctx, f.owner, ids[0], 10, 0)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 1 || got[0].SeekerID != s.ID {
		t.Fatalf("unexpected candidates: %+v", got)
	}

	stranger := match.Actor{ID: uuid.New(), Role: match.RoleOwner}
	if _, err := uc.Candidates(ctx, stranger, ids[0], 10, 0); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := uc.Candidates(ctx, f.owner, uuid.New(), 10, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
