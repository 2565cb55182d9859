package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
)

const maxApplicationMessage = 2000

type ApplicationUsecase interface {
	Apply(ctx context.Context, actor match.Actor, postID uuid.UUID, message string) (profile.Application, error)
	ListForPost(ctx context.Context, actor match.Actor, postID uuid.UUID, limit, offset int) ([]profile.Application, error)
}

// Application records a seeker's explicit interest in a post. It is
// independent of the system-computed match for the same pair.
type Application struct {
	posts        repository.PostRepository
	applications repository.ApplicationRepository
	now          func() time.Time
}

func NewApplicationUsecase(posts repository.PostRepository, applications repository.ApplicationRepository) *Application {
	return &Application{
		posts:        posts,
		applications: applications,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (u *Application) Apply(ctx context.Context, actor match.Actor, postID uuid.UUID, message string) (profile.Application, error) {
	if actor.ID == uuid.Nil {
		return profile.Application{}, ErrUnauthorized
	}
	if actor.Role != match.RoleSeeker {
		return profile.Application{}, ErrForbidden
	}
	message = strings.TrimSpace(message)
	if len(message) > maxApplicationMessage {
		return profile.Application{}, ErrInvalidInput
	}

	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return profile.Application{}, ErrNotFound
		}
		return profile.Application{}, fmt.Errorf("apply: %w", err)
	}
	if !p.IsOpen {
		return profile.Application{}, ErrPostClosed
	}

	a := profile.Application{
		ID:        uuid.New(),
		SeekerID:  actor.ID,
		PostID:    postID,
		Message:   message,
		CreatedAt: u.now(),
	}
	if err := u.applications.CreateApplication(ctx, a); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return profile.Application{}, ErrAlreadyExists
		}
		return profile.Application{}, fmt.Errorf("apply: %w", err)
	}
	return a, nil
}

func (u *Application) ListForPost(ctx context.Context, actor match.Actor, postID uuid.UUID, limit, offset int) ([]profile.Application, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list applications: %w", err)
	}
	if actor.Role != match.RoleOwner || p.OwnerID != actor.ID {
		return nil, ErrForbidden
	}

	out, err := u.applications.ListApplicationsByPost(ctx, postID, clampRankLimit(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}
