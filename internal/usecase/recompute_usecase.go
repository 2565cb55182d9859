package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"parttime-match/internal/domain/match"
	"parttime-match/internal/domain/matching"
	"parttime-match/internal/domain/profile"
	"parttime-match/internal/logger"
	"parttime-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Notifier is told which readers have fresh data after a batch.
type Notifier interface {
	MatchesUpdated(seekerID uuid.UUID)
	CandidatesUpdated(ownerID, postID uuid.UUID)
	MatchStatusChanged(m match.Match)
}

type RecomputeUsecase interface {
	RecomputeForSeeker(ctx context.Context, seekerID uuid.UUID) (BatchReport, error)
	RecomputeForPost(ctx context.Context, postID uuid.UUID) (BatchReport, error)
	ForEachOpenPost(ctx context.Context, fn func(profile.Post) error) error
}

type RecomputeParams struct {
	Workers     int
	PairTimeout time.Duration
	PageSize    int
}

// PairFailure records a pair that was skipped during a batch.
type PairFailure struct {
	SeekerID uuid.UUID
	PostID   uuid.UUID
	Err      error
}

type BatchReport struct {
	Scored   int
	Failures []PairFailure
}

func (r *BatchReport) Merge(o BatchReport) {
	r.Scored += o.Scored
	r.Failures = append(r.Failures, o.Failures...)
}

type Recompute struct {
	seekers  repository.SeekerRepository
	posts    repository.PostRepository
	matches  repository.MatchRepository
	engine   *matching.Engine
	notifier Notifier
	params   RecomputeParams
	log      *zap.Logger
	now      func() time.Time
}

func NewRecomputeUsecase(
	seekers repository.SeekerRepository,
	posts repository.PostRepository,
	matches repository.MatchRepository,
	engine *matching.Engine,
	notifier Notifier,
	params RecomputeParams,
	log *zap.Logger,
) *Recompute {
	if params.Workers <= 0 {
		params.Workers = 8
	}
	if params.PairTimeout <= 0 {
		params.PairTimeout = 2 * time.Second
	}
	if params.PageSize <= 0 {
		params.PageSize = 200
	}
	return &Recompute{
		seekers:  seekers,
		posts:    posts,
		matches:  matches,
		engine:   engine,
		notifier: notifier,
		params:   params,
		log:      logger.OrNop(log).Named("recompute"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RecomputeForSeeker scores the seeker against every open post. Pair failures
// are recorded in the report and never stop the batch; the returned error is
// set only when the seeker or the post listing cannot be read.
func (u *Recompute) RecomputeForSeeker(ctx context.Context, seekerID uuid.UUID) (BatchReport, error) {
	var report BatchReport

	s, err := u.seekers.GetSeeker(ctx, seekerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return report, ErrNotFound
		}
		return report, fmt.Errorf("recompute seeker %s: %w", seekerID, err)
	}

	start := time.Now()
	var changed []profile.Post
	err = u.ForEachOpenPostPage(ctx, func(page []profile.Post) error {
		pairs := make([]pair, 0, len(page))
		for _, p := range page {
			pairs = append(pairs, pair{seeker: s, post: p})
		}
		r, touched := u.scoreAll(ctx, pairs)
		report.Merge(r)
		for _, pr := range touched {
			changed = append(changed, pr.post)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("recompute seeker %s: %w", seekerID, err)
	}

	u.log.Debug("seeker recomputed",
		zap.String("seeker_id", seekerID.String()),
		zap.Int("scored", report.Scored),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	if u.notifier != nil {
		u.notifier.MatchesUpdated(seekerID)
		for _, p := range changed {
			u.notifier.CandidatesUpdated(p.OwnerID, p.ID)
		}
	}
	return report, nil
}

// RecomputeForPost scores an open post against every seeker. A closed post is
// not scored; its previously matched seekers are still notified so their
// recommendation lists drop it.
func (u *Recompute) RecomputeForPost(ctx context.Context, postID uuid.UUID) (BatchReport, error) {
	var report BatchReport

	p, err := u.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return report, ErrNotFound
		}
		return report, fmt.Errorf("recompute post %s: %w", postID, err)
	}

	if !p.IsOpen {
		u.notifyPostSeekers(ctx, p)
		return report, nil
	}

	start := time.Now()
	for off := 0; ; {
		page, err := u.seekers.ListSeekers(ctx, u.params.PageSize, off)
		if err != nil {
			return report, fmt.Errorf("recompute post %s: %w", postID, err)
		}
		if len(page) == 0 {
			break
		}
		pairs := make([]pair, 0, len(page))
		for _, s := range page {
			pairs = append(pairs, pair{seeker: s, post: p})
		}
		r, _ := u.scoreAll(ctx, pairs)
		report.Merge(r)
		off += len(page)
		if len(page) < u.params.PageSize {
			break
		}
	}

	u.log.Debug("post recomputed",
		zap.String("post_id", postID.String()),
		zap.Int("scored", report.Scored),
		zap.Int("failed", len(report.Failures)),
		zap.Duration("duration", time.Since(start)),
	)
	u.notifyPostSeekers(ctx, p)
	return report, nil
}

func (u *Recompute) ForEachOpenPost(ctx context.Context, fn func(profile.Post) error) error {
	return u.ForEachOpenPostPage(ctx, func(page []profile.Post) error {
		for _, p := range page {
			if err := fn(p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *Recompute) ForEachOpenPostPage(ctx context.Context, fn func([]profile.Post) error) error {
	for off := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := u.posts.ListOpenPosts(ctx, u.params.PageSize, off)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		if err := fn(page); err != nil {
			return err
		}
		off += len(page)
		if len(page) < u.params.PageSize {
			return nil
		}
	}
}

type pair struct {
	seeker profile.Seeker
	post   profile.Post
}

// scoreAll scores pairs concurrently and returns the report together with the
// pairs whose stored match changed, either rescored or dropped.
func (u *Recompute) scoreAll(ctx context.Context, pairs []pair) (BatchReport, []pair) {
	var (
		mu      sync.Mutex
		report  BatchReport
		touched []pair
	)

	var g errgroup.Group
	g.SetLimit(u.params.Workers)
	for _, pr := range pairs {
		g.Go(func() error {
			changed, err := u.scorePair(ctx, pr.seeker, pr.post)

			mu.Lock()
			defer mu.Unlock()
			if changed {
				touched = append(touched, pr)
			}
			if err != nil {
				report.Failures = append(report.Failures, PairFailure{SeekerID: pr.seeker.ID, PostID: pr.post.ID, Err: err})
				u.logPairFailure(pr, err)
				return nil
			}
			report.Scored++
			return nil
		})
	}
	_ = g.Wait()
	return report, touched
}

// scorePair upserts the pair's score. A pair that can no longer be scored
// loses its pending row so a stale score is not served; a row the owner has
// already acted on is left as is.
func (u *Recompute) scorePair(ctx context.Context, s profile.Seeker, p profile.Post) (bool, error) {
	pctx, cancel := context.WithTimeout(ctx, u.params.PairTimeout)
	defer cancel()

	res, err := u.engine.Score(s, p)
	if errors.Is(err, matching.ErrIncompleteProfile) {
		removed, derr := u.matches.DeletePending(pctx, s.ID, p.ID)
		if derr != nil {
			return false, derr
		}
		return removed, err
	}
	if err != nil {
		return false, err
	}
	if err := pctx.Err(); err != nil {
		return false, err
	}
	err = u.matches.Upsert(pctx, match.Upsert{
		SeekerID: s.ID,
		PostID:   p.ID,
		Score:    res.Total,
		Factors:  res.Factors,
		ScoredAt: u.now(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (u *Recompute) logPairFailure(pr pair, err error) {
	fields := []zap.Field{
		zap.String("seeker_id", pr.seeker.ID.String()),
		zap.String("post_id", pr.post.ID.String()),
		zap.Error(err),
	}
	switch {
	case errors.Is(err, matching.ErrIncompleteProfile):
		u.log.Debug("pair skipped", fields...)
	case errors.Is(err, context.DeadlineExceeded):
		u.log.Warn("pair timed out", fields...)
	default:
		u.log.Error("pair failed", fields...)
	}
}

func (u *Recompute) notifyPostSeekers(ctx context.Context, p profile.Post) {
	if u.notifier == nil {
		return
	}
	u.notifier.CandidatesUpdated(p.OwnerID, p.ID)

	ids, err := u.matches.ListSeekerIDsByPost(ctx, p.ID)
	if err != nil {
		u.log.Warn("list matched seekers failed", zap.String("post_id", p.ID.String()), zap.Error(err))
		return
	}
	for _, id := range ids {
		u.notifier.MatchesUpdated(id)
	}
}
