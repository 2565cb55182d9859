package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/logger"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const statusWriteAttempts = 3

type MatchStatusUsecase interface {
	UpdateStatus(ctx context.Context, actor match.Actor, seekerID, postID uuid.UUID, to match.Status) (match.Match, error)
}

type MatchStatus struct {
	posts    repository.PostRepository
	matches  repository.MatchRepository
	notifier Notifier
	queue    Enqueuer
	log      *zap.Logger
	now      func() time.Time
}

func NewMatchStatusUsecase(posts repository.PostRepository, matches repository.MatchRepository, notifier Notifier, queue Enqueuer, log *zap.Logger) *MatchStatus {
	return &MatchStatus{
		posts:    posts,
		matches:  matches,
		notifier: notifier,
		queue:    queue,
		log:      logger.OrNop(log).Named("match_status"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UpdateStatus moves a match along the lifecycle on behalf of the post owner.
// A lost version race is retried against the fresh row, so a concurrent
// terminal move surfaces as ErrInvalidTransition rather than a silent
// overwrite.
func (u *MatchStatus) UpdateStatus(ctx context.Context, actor match.Actor, seekerID, postID uuid.UUID, to match.Status) (match.Match, error) {
	if actor.ID == uuid.Nil {
		return match.Match{}, ErrUnauthorized
	}

	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return match.Match{}, ErrNotFound
		}
		return match.Match{}, fmt.Errorf("update status: %w", err)
	}

	for attempt := 1; ; attempt++ {
		cur, err := u.matches.Get(ctx, seekerID, postID)
		if err != nil {
			if errors.Is(err, match.ErrNotFound) {
				return match.Match{}, ErrNotFound
			}
			return match.Match{}, fmt.Errorf("update status: %w", err)
		}

		if err := match.CheckTransition(actor, p.OwnerID, cur.Status, to); err != nil {
			return match.Match{}, err
		}

		updated, err := u.matches.SetStatus(ctx, match.StatusChange{
			SeekerID:        seekerID,
			PostID:          postID,
			ExpectedVersion: cur.Version,
			From:            cur.Status,
			To:              to,
			ActorID:         actor.ID,
			At:              u.now(),
		})
		switch {
		case err == nil:
			if u.notifier != nil {
				u.notifier.MatchStatusChanged(updated)
			}
			if to == match.StatusAccepted {
				u.closeIfFilled(ctx, p)
			}
			return updated, nil
		case errors.Is(err, match.ErrStorageConflict):
			if attempt >= statusWriteAttempts {
				return match.Match{}, ErrStorageConflict
			}
		case errors.Is(err, match.ErrNotFound):
			return match.Match{}, ErrNotFound
		default:
			return match.Match{}, fmt.Errorf("update status: %w", err)
		}
	}
}

// closeIfFilled closes an open post once its accepted matches reach the
// headcount. The status move has already been stored, so failures here are
// logged and never returned.
func (u *MatchStatus) closeIfFilled(ctx context.Context, p profile.Post) {
	if !p.IsOpen || p.Headcount <= 0 {
		return
	}
	accepted, err := u.matches.CountByStatus(ctx, p.ID, match.StatusAccepted)
	if err != nil {
		u.log.Warn("count accepted matches failed", zap.String("post_id", p.ID.String()), zap.Error(err))
		return
	}
	if accepted < p.Headcount {
		return
	}

	if err := u.posts.SetPostOpen(ctx, p.ID, false, u.now()); err != nil {
		u.log.Warn("close filled post failed", zap.String("post_id", p.ID.String()), zap.Error(err))
		return
	}
	u.log.Info("post filled, closed",
		zap.String("post_id", p.ID.String()),
		zap.Int("headcount", p.Headcount),
		zap.Int("accepted", accepted),
	)
	if u.queue != nil {
		u.queue.EnqueuePost(p.ID)
	}
}
