package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
)

// Enqueuer schedules recomputation without waiting for it.
type Enqueuer interface {
	EnqueueSeeker(id uuid.UUID)
	EnqueuePost(id uuid.UUID)
}

type SeekerInput struct {
	Location      *profile.Coordinates
	AvailableDays []string
	Skills        []string
	MinWage       *float64
	Experience    string
}

type PostInput struct {
	ShopID         uuid.UUID
	Title          string
	Category       string
	Location       *profile.Coordinates
	Wage           float64
	RequiredDays   []string
	RequiredSkills []string
	Headcount      int
}

type ProfileUsecase interface {
	UpsertSeeker(ctx context.Context, actor match.Actor, in SeekerInput) (profile.Seeker, error)
	GetSeeker(ctx context.Context, actor match.Actor) (profile.Seeker, error)
	CreateShop(ctx context.Context, actor match.Actor, name string) (profile.Shop, error)
	CreatePost(ctx context.Context, actor match.Actor, in PostInput) (profile.Post, error)
	UpdatePost(ctx context.Context, actor match.Actor, postID uuid.UUID, in PostInput) (profile.Post, error)
	SetPostOpen(ctx context.Context, actor match.Actor, postID uuid.UUID, open bool) (profile.Post, error)
	GetPost(ctx context.Context, postID uuid.UUID) (profile.Post, error)
}

type Profile struct {
	seekers repository.SeekerRepository
	shops   repository.ShopRepository
	posts   repository.PostRepository
	queue   Enqueuer
	now     func() time.Time
}

func NewProfileUsecase(seekers repository.SeekerRepository, shops repository.ShopRepository, posts repository.PostRepository, queue Enqueuer) *Profile {
	return &Profile{
		seekers: seekers,
		shops:   shops,
		posts:   posts,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (u *Profile) UpsertSeeker(ctx context.Context, actor match.Actor, in SeekerInput) (profile.Seeker, error) {
	if actor.ID == uuid.Nil {
		return profile.Seeker{}, ErrUnauthorized
	}
	if actor.Role != match.RoleSeeker {
		return profile.Seeker{}, ErrForbidden
	}
	if in.Location != nil && !in.Location.Valid() {
		return profile.Seeker{}, ErrInvalidInput
	}
	if in.MinWage != nil && (*in.MinWage < 0 || math.IsNaN(*in.MinWage)) {
		return profile.Seeker{}, ErrInvalidInput
	}
	days, err := profile.ParseWeekdays(in.AvailableDays)
	if err != nil {
		return profile.Seeker{}, ErrInvalidInput
	}

	s := profile.Seeker{
		ID:            actor.ID,
		Location:      in.Location,
		AvailableDays: days,
		Skills:        profile.NormalizeSkills(in.Skills),
		MinWage:       in.MinWage,
		Experience:    strings.TrimSpace(in.Experience),
		UpdatedAt:     u.now(),
	}
	if err := u.seekers.UpsertSeeker(ctx, s); err != nil {
		return profile.Seeker{}, fmt.Errorf("upsert seeker: %w", err)
	}

	u.queue.EnqueueSeeker(s.ID)
	return s, nil
}

func (u *Profile) GetSeeker(ctx context.Context, actor match.Actor) (profile.Seeker, error) {
	if actor.ID == uuid.Nil {
		return profile.Seeker{}, ErrUnauthorized
	}
	s, err := u.seekers.GetSeeker(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Seeker{}, ErrNotFound
		}
		return profile.Seeker{}, fmt.Errorf("get seeker: %w", err)
	}
	return s, nil
}

func (u *Profile) CreateShop(ctx context.Context, actor match.Actor, name string) (profile.Shop, error) {
	if actor.ID == uuid.Nil {
		return profile.Shop{}, ErrUnauthorized
	}
	if actor.Role != match.RoleOwner {
		return profile.Shop{}, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return profile.Shop{}, ErrInvalidInput
	}

	sh := profile.Shop{ID: uuid.New(), OwnerID: actor.ID, Name: name, CreatedAt: u.now()}
	if err := u.shops.CreateShop(ctx, sh); err != nil {
		return profile.Shop{}, fmt.Errorf("create shop: %w", err)
	}
	return sh, nil
}

func (u *Profile) CreatePost(ctx context.Context, actor match.Actor, in PostInput) (profile.Post, error) {
	if actor.ID == uuid.Nil {
		return profile.Post{}, ErrUnauthorized
	}
	sh, err := u.shops.GetShop(ctx, in.ShopID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Post{}, ErrNotFound
		}
		return profile.Post{}, fmt.Errorf("create post: %w", err)
	}
	if actor.Role != match.RoleOwner || sh.OwnerID != actor.ID {
		return profile.Post{}, ErrForbidden
	}

	p, err := buildPost(in)
	if err != nil {
		return profile.Post{}, err
	}
	p.ID = uuid.New()
	p.ShopID = sh.ID
	p.OwnerID = sh.OwnerID
	p.IsOpen = true
	p.UpdatedAt = u.now()

	if err := u.posts.CreatePost(ctx, p); err != nil {
		return profile.Post{}, fmt.Errorf("create post: %w", err)
	}

	u.queue.EnqueuePost(p.ID)
	return p, nil
}

func (u *Profile) UpdatePost(ctx context.Context, actor match.Actor, postID uuid.UUID, in PostInput) (profile.Post, error) {
	cur, err := u.ownedPost(ctx, actor, postID)
	if err != nil {
		return profile.Post{}, err
	}

	p, err := buildPost(in)
	if err != nil {
		return profile.Post{}, err
	}
	p.ID = cur.ID
	p.ShopID = cur.ShopID
	p.OwnerID = cur.OwnerID
	p.IsOpen = cur.IsOpen
	p.UpdatedAt = u.now()

	if err := u.posts.UpdatePost(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Post{}, ErrNotFound
		}
		return profile.Post{}, fmt.Errorf("update post: %w", err)
	}

	u.queue.EnqueuePost(p.ID)
	return p, nil
}

// SetPostOpen closes or reopens a post. Recomputation is scheduled either way
// so seekers' lists drop or regain it.
func (u *Profile) SetPostOpen(ctx context.Context, actor match.Actor, postID uuid.UUID, open bool) (profile.Post, error) {
	p, err := u.ownedPost(ctx, actor, postID)
	if err != nil {
		return profile.Post{}, err
	}

	p.IsOpen = open
	p.UpdatedAt = u.now()
	if err := u.posts.SetPostOpen(ctx, postID, open, p.UpdatedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Post{}, ErrNotFound
		}
		return profile.Post{}, fmt.Errorf("set post open: %w", err)
	}

	u.queue.EnqueuePost(p.ID)
	return p, nil
}

func (u *Profile) GetPost(ctx context.Context, postID uuid.UUID) (profile.Post, error) {
	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Post{}, ErrNotFound
		}
		return profile.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (u *Profile) ownedPost(ctx context.Context, actor match.Actor, postID uuid.UUID) (profile.Post, error) {
	if actor.ID == uuid.Nil {
		return profile.Post{}, ErrUnauthorized
	}
	p, err := u.GetPost(ctx, postID)
	if err != nil {
		return profile.Post{}, err
	}
	if actor.Role != match.RoleOwner || p.OwnerID != actor.ID {
		return profile.Post{}, ErrForbidden
	}
	return p, nil
}

func buildPost(in PostInput) (profile.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return profile.Post{}, ErrInvalidInput
	}
	if in.Location != nil && !in.Location.Valid() {
		return profile.Post{}, ErrInvalidInput
	}
	if in.Wage < 0 || math.IsNaN(in.Wage) {
		return profile.Post{}, ErrInvalidInput
	}
	days, err := profile.ParseWeekdays(in.RequiredDays)
	if err != nil {
		return profile.Post{}, ErrInvalidInput
	}
	headcount := in.Headcount
	if headcount == 0 {
		headcount = 1
	}
	if headcount < 0 {
		return profile.Post{}, ErrInvalidInput
	}

	return profile.Post{
		Title:          title,
		Category:       strings.TrimSpace(in.Category),
		Location:       in.Location,
		Wage:           in.Wage,
		RequiredDays:   days,
		RequiredSkills: profile.NormalizeSkills(in.RequiredSkills),
		Headcount:      headcount,
	}, nil
}
