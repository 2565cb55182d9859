package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultRankLimit = 20
	maxRankLimit     = 50
)

type RecommendationUsecase interface {
	Rank(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]match.Match, error)
	All(ctx context.Context, seekerID uuid.UUID, pageSize int) iter.Seq2[match.Match, error]
	Candidates(ctx context.Context, actor match.Actor, postID uuid.UUID, limit, offset int) ([]match.Match, error)
}

// Recommendation serves ranked reads straight from the match index. Nothing
// here writes or caches, so paging never observes a post after it closed.
type Recommendation struct {
	seekers repository.SeekerRepository
	posts   repository.PostRepository
	matches repository.MatchRepository
}

func NewRecommendationUsecase(seekers repository.SeekerRepository, posts repository.PostRepository, matches repository.MatchRepository) *Recommendation {
	return &Recommendation{seekers: seekers, posts: posts, matches: matches}
}

func (u *Recommendation) Rank(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]match.Match, error) {
	if seekerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if offset < 0 {
		return nil, ErrInvalidInput
	}
	limit = clampRankLimit(limit)

	if _, err := u.seekers.GetSeeker(ctx, seekerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rank: %w", err)
	}

	out, err := u.matches.TopMatchesForSeeker(ctx, seekerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return out, nil
}

// All walks every ranked match of a seeker page by page. Each call of the
// returned sequence starts over from the first page.
func (u *Recommendation) All(ctx context.Context, seekerID uuid.UUID, pageSize int) iter.Seq2[match.Match, error] {
	pageSize = clampRankLimit(pageSize)
	return func(yield func(match.Match, error) bool) {
		for off := 0; ; {
			page, err := u.Rank(ctx, seekerID, pageSize, off)
			if err != nil {
				yield(match.Match{}, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			off += len(page)
		}
	}
}

// Candidates ranks the seekers matched to a post. Only the post's owner may
// read them.
func (u *Recommendation) Candidates(ctx context.Context, actor match.Actor, postID uuid.UUID, limit, offset int) ([]match.Match, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if offset < 0 {
		return nil, ErrInvalidInput
	}
	limit = clampRankLimit(limit)

	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("candidates: %w", err)
	}
	if actor.Role != match.RoleOwner || actor.ID != p.OwnerID {
		return nil, ErrForbidden
	}

	out, err := u.matches.TopCandidatesForPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("candidates: %w", err)
	}
	return out, nil
}

func clampRankLimit(limit int) int {
	if limit <= 0 {
		return defaultRankLimit
	}
	if limit > maxRankLimit {
		return maxRankLimit
	}
	return limit
}
