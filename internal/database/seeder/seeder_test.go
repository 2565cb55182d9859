package seeder

import (
	"context"
	"testing"

	"parttime-match/internal/repository/memory"
)

func memoryTarget() (Target, *memory.Store) {
	store := memory.New()
	return Target{Users: store, Seekers: store, Shops: store, Posts: store}, store
}

func TestDefaults_SeedIsRepeatable(t *testing.T) {
	target, store := memoryTarget()
	r := Runner{Seeders: Defaults()}

	for i := range 2 {
		if err := r.Run(context.Background(), target); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	for _, id := range SeekerIDs() {
		if _, err := store.GetSeeker(context.Background(), id); err != nil {
			t.Fatalf("seeker %s missing: %v", id, err)
		}
	}

	posts, err := store.ListOpenPosts(context.Background(), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != len(demoPosts) {
		t.Fatalf("expected %d open posts, got %d", len(demoPosts), len(posts))
	}
	for _, p := range posts {
		if p.OwnerID != seedID(demoOwnerEmail) {
			t.Fatalf("post %s has owner %s", p.Title, p.OwnerID)
		}
	}
}

func TestDefaults_SeekerWithoutSkillsStaysUnknown(t *testing.T) {
	target, store := memoryTarget()
	if err := (Runner{Seeders: Defaults()}).Run(context.Background(), target); err != nil {
		t.Fatal(err)
	}

	s, err := store.GetSeeker(context.Background(), seedID("arm@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Skills != nil || s.MinWage != nil {
		t.Fatalf("expected unknown skills and wage, got %v %v", s.Skills, s.MinWage)
	}
}

func TestRunner_RejectsIncompleteTarget(t *testing.T) {
	if err := (Runner{Seeders: Defaults()}).Run(context.Background(), Target{}); err == nil {
		t.Fatal("expected error for empty target")
	}
}
