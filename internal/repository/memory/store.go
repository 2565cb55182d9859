// Package memory is a process-local implementation of every repository
// interface. It backs STORAGE_DRIVER=memory and the usecase tests.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/domain/user"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
)

type pairKey struct {
	seeker uuid.UUID
	post   uuid.UUID
}

type matchRow struct {
	match.Match
	history []match.HistoryEntry
}

type Store struct {
	mu sync.RWMutex

	users        map[uuid.UUID]user.User
	emails       map[string]uuid.UUID
	seekers      map[uuid.UUID]profile.Seeker
	shops        map[uuid.UUID]profile.Shop
	posts        map[uuid.UUID]profile.Post
	matches      map[pairKey]*matchRow
	applications map[pairKey]profile.Application

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:        map[uuid.UUID]user.User{},
		emails:       map[string]uuid.UUID{},
		seekers:      map[uuid.UUID]profile.Seeker{},
		shops:        map[uuid.UUID]profile.Shop{},
		posts:        map[uuid.UUID]profile.Post{},
		matches:      map[pairKey]*matchRow{},
		applications: map[pairKey]profile.Application{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// users

func (s *Store) CreateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := s.emails[email]; ok {
		return user.ErrEmailTaken
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	u.Email = email
	s.users[u.ID] = u
	s.emails[email] = u.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok, nil
}

func (s *Store) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// seekers

func (s *Store) UpsertSeeker(_ context.Context, sk profile.Seeker) error {
	if sk.ID == uuid.Nil {
		return repository.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sk.UpdatedAt.IsZero() {
		sk.UpdatedAt = s.now()
	}
	s.seekers[sk.ID] = cloneSeeker(sk)
	return nil
}

func (s *Store) GetSeeker(_ context.Context, id uuid.UUID) (profile.Seeker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sk, ok := s.seekers[id]
	if !ok {
		return profile.Seeker{}, repository.ErrNotFound
	}
	return cloneSeeker(sk), nil
}

func (s *Store) ListSeekers(_ context.Context, limit, offset int) ([]profile.Seeker, error) {
	s.mu.RLock()
	all := make([]profile.Seeker, 0, len(s.seekers))
	for _, sk := range s.seekers {
		all = append(all, cloneSeeker(sk))
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b profile.Seeker) int { return compareUUID(a.ID, b.ID) })
	return page(all, limit, offset), nil
}

// shops

func (s *Store) CreateShop(_ context.Context, sh profile.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[sh.ID]; ok {
		return repository.ErrAlreadyExists
	}
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = s.now()
	}
	s.shops[sh.ID] = sh
	return nil
}

func (s *Store) GetShop(_ context.Context, id uuid.UUID) (profile.Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shops[id]
	if !ok {
		return profile.Shop{}, repository.ErrNotFound
	}
	return sh, nil
}

// posts

func (s *Store) CreatePost(_ context.Context, p profile.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; ok {
		return repository.ErrAlreadyExists
	}
	sh, ok := s.shops[p.ShopID]
	if !ok {
		return repository.ErrNotFound
	}
	p.OwnerID = sh.OwnerID
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *Store) UpdatePost(_ context.Context, p profile.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.ShopID = cur.ShopID
	p.OwnerID = cur.OwnerID
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}
	s.posts[p.ID] = clonePost(p)
	return nil
}

func (s *Store) SetPostOpen(_ context.Context, id uuid.UUID, open bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsOpen = open
	p.UpdatedAt = at
	s.posts[id] = p
	return nil
}

func (s *Store) GetPost(_ context.Context, id uuid.UUID) (profile.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return profile.Post{}, repository.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *Store) ListOpenPosts(_ context.Context, limit, offset int) ([]profile.Post, error) {
	s.mu.RLock()
	all := make([]profile.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if p.IsOpen {
			all = append(all, clonePost(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b profile.Post) int { return compareUUID(a.ID, b.ID) })
	return page(all, limit, offset), nil
}

// matches

func (s *Store) Upsert(_ context.Context, u match.Upsert) error {
	if u.SeekerID == uuid.Nil || u.PostID == uuid.Nil {
		return nil
	}
	if u.ScoredAt.IsZero() {
		u.ScoredAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{seeker: u.SeekerID, post: u.PostID}
	if row, ok := s.matches[k]; ok {
		row.OverallScore = u.Score
		row.Factors = u.Factors
		row.UpdatedAt = u.ScoredAt
		return nil
	}
	s.matches[k] = &matchRow{Match: match.Match{
		SeekerID:     u.SeekerID,
		PostID:       u.PostID,
		OverallScore: u.Score,
		Factors:      u.Factors,
		Status:       match.StatusPending,
		Version:      1,
		CreatedAt:    u.ScoredAt,
		UpdatedAt:    u.ScoredAt,
	}}
	return nil
}

func (s *Store) Get(_ context.Context, seekerID, postID uuid.UUID) (match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.matches[pairKey{seeker: seekerID, post: postID}]
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	return row.Match, nil
}

func (s *Store) SetStatus(_ context.Context, c match.StatusChange) (match.Match, error) {
	if c.At.IsZero() {
		c.At = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.matches[pairKey{seeker: c.SeekerID, post: c.PostID}]
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	if row.Version != c.ExpectedVersion {
		return match.Match{}, match.ErrStorageConflict
	}
	row.Status = c.To
	row.Version++
	row.UpdatedAt = c.At
	row.history = append(row.history, match.HistoryEntry{From: c.From, To: c.To, ActorID: c.ActorID, At: c.At})
	return row.Match, nil
}

// History returns the recorded status moves of a match, oldest first.
func (s *Store) History(seekerID, postID uuid.UUID) []match.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.matches[pairKey{seeker: seekerID, post: postID}]
	if !ok {
		return nil
	}
	return slices.Clone(row.history)
}

func (s *Store) TopMatchesForSeeker(_ context.Context, seekerID uuid.UUID, limit, offset int) ([]match.Match, error) {
	s.mu.RLock()
	out := make([]match.Match, 0)
	for k, row := range s.matches {
		if k.seeker != seekerID {
			continue
		}
		if p, ok := s.posts[k.post]; !ok || !p.IsOpen {
			continue
		}
		out = append(out, row.Match)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b match.Match) int {
		return rankOrder(a, b, compareUUID(a.PostID, b.PostID))
	})
	return page(out, limit, offset), nil
}

func (s *Store) TopCandidatesForPost(_ context.Context, postID uuid.UUID, limit, offset int) ([]match.Match, error) {
	s.mu.RLock()
	out := make([]match.Match, 0)
	for k, row := range s.matches {
		if k.post == postID {
			out = append(out, row.Match)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b match.Match) int {
		return rankOrder(a, b, compareUUID(a.SeekerID, b.SeekerID))
	})
	return page(out, limit, offset), nil
}

func (s *Store) ListSeekerIDsByPost(_ context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	out := make([]uuid.UUID, 0)
	for k := range s.matches {
		if k.post == postID {
			out = append(out, k.seeker)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compareUUID)
	return out, nil
}

func (s *Store) CountByStatus(_ context.Context, postID uuid.UUID, status match.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for k, row := range s.matches {
		if k.post == postID && row.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeletePending(_ context.Context, seekerID, postID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{seeker: seekerID, post: postID}
	row, ok := s.matches[k]
	if !ok || row.Status != match.StatusPending {
		return false, nil
	}
	delete(s.matches, k)
	return true, nil
}

// applications

func (s *Store) CreateApplication(_ context.Context, a profile.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := pairKey{seeker: a.SeekerID, post: a.PostID}
	if _, ok := s.applications[k]; ok {
		return repository.ErrAlreadyExists
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.applications[k] = a
	return nil
}

func (s *Store) ListApplicationsByPost(_ context.Context, postID uuid.UUID, limit, offset int) ([]profile.Application, error) {
	s.mu.RLock()
	out := make([]profile.Application, 0)
	for k, a := range s.applications {
		if k.post == postID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b profile.Application) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(a.ID, b.ID)
	})
	return page(out, limit, offset), nil
}

func rankOrder(a, b match.Match, tie int) int {
	if c := cmp.Compare(b.OverallScore, a.OverallScore); c != 0 {
		return c
	}
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return tie
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func cloneSeeker(s profile.Seeker) profile.Seeker {
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	if s.MinWage != nil {
		w := *s.MinWage
		s.MinWage = &w
	}
	s.Skills = slices.Clone(s.Skills)
	return s
}

func clonePost(p profile.Post) profile.Post {
	if p.Location != nil {
		loc := *p.Location
		p.Location = &loc
	}
	p.RequiredSkills = slices.Clone(p.RequiredSkills)
	return p
}
