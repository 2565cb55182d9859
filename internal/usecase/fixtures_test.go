package usecase

import (
	"context"
	"sync"
	"testing"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/matching"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/repository/memory"

	"github.com/google/uuid"
)

type recordingQueue struct {
	mu      sync.Mutex
	seekers []uuid.UUID
	posts   []uuid.UUID
}

func (q *recordingQueue) EnqueueSeeker(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seekers = append(q.seekers, id)
}

func (q *recordingQueue) EnqueuePost(id uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.posts = append(q.posts, id)
}

type recordingNotifier struct {
	mu         sync.Mutex
	seekers    map[uuid.UUID]int
	owners     map[uuid.UUID]int
	statusMove []match.Match
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{seekers: map[uuid.UUID]int{}, owners: map[uuid.UUID]int{}}
}

func (n *recordingNotifier) MatchesUpdated(seekerID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seekers[seekerID]++
}

func (n *recordingNotifier) CandidatesUpdated(ownerID, _ uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owners[ownerID]++
}

func (n *recordingNotifier) MatchStatusChanged(m match.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusMove = append(n.statusMove, m)
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store    *memory.Store
	engine   *matching.Engine
	notifier *recordingNotifier
	owner    match.Actor
	shop     profile.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	engine, err := matching.NewEngine(matching.DefaultParams())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	f := &fixture{
		store:    memory.New(),
		engine:   engine,
		notifier: newRecordingNotifier(),
		owner:    match.Actor{ID: uuid.New(), Role: match.RoleOwner},
	}
	f.shop = profile.Shop{ID: uuid.New(), OwnerID: f.owner.ID, Name: "Noodle Bar"}
	if err := f.store.CreateShop(context.Background(), f.shop); err != nil {
		t.Fatalf("create shop: %v", err)
	}
	return f
}

func (f *fixture) recompute() *Recompute {
	return NewRecomputeUsecase(f.store, f.store, f.store, f.engine, f.notifier, RecomputeParams{Workers: 4, PageSize: 2}, nil)
}

func (f *fixture) addSeeker(t *testing.T, lat, lng float64, skills ...string) profile.Seeker {
	t.Helper()

	s := profile.Seeker{
		ID:            uuid.New(),
		Location:      &profile.Coordinates{Latitude: lat, Longitude: lng},
		AvailableDays: profile.WeekdaySet(0).Add(1).Add(3),
		Skills:        profile.NormalizeSkills(skills),
		MinWage:       ptr(50.0),
	}
	if err := f.store.UpsertSeeker(context.Background(), s); err != nil {
		t.Fatalf("upsert seeker: %v", err)
	}
	return s
}

func (f *fixture) addPost(t *testing.T, lat, lng float64, skills ...string) profile.Post {
	t.Helper()

	p := profile.Post{
		ID:             uuid.New(),
		ShopID:         f.shop.ID,
		Title:          "Kitchen help",
		Location:       &profile.Coordinates{Latitude: lat, Longitude: lng},
		Wage:           60,
		RequiredDays:   profile.WeekdaySet(0).Add(1),
		RequiredSkills: profile.NormalizeSkills(skills),
		Headcount:      1,
		IsOpen:         true,
	}
	if err := f.store.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	got, _ := f.store.GetPost(context.Background(), p.ID)
	return got
}
