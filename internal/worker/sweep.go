package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parttime-match/internal/domain/profile"
	"parttime-match/internal/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sweepLockKey = "recompute:lock:sweep"

// OpenPostLister walks every open post.
type OpenPostLister interface {
	ForEachOpenPost(ctx context.Context, fn func(profile.Post) error) error
}

type PostEnqueuer interface {
	EnqueuePost(id uuid.UUID)
}

type SweepParams struct {
	// Spec is a robfig/cron spec such as "@every 6h".
	Spec string
	// RPS paces how fast posts are fed to the dispatcher. Zero means unpaced.
	RPS     float64
	LockTTL time.Duration
}

// Sweeper periodically re-enqueues every open post so scores drift back in
// line after missed triggers or weight changes.
type Sweeper struct {
	cron    *cron.Cron
	spec    string
	posts   OpenPostLister
	queue   PostEnqueuer
	locker  Locker
	limiter *rate.Limiter
	lockTTL time.Duration
	log     *zap.Logger

	runWG sync.WaitGroup
}

func NewSweeper(posts OpenPostLister, queue PostEnqueuer, locker Locker, params SweepParams, log *zap.Logger) *Sweeper {
	if params.Spec == "" {
		params.Spec = "@every 6h"
	}
	if params.LockTTL <= 0 {
		params.LockTTL = 10 * time.Minute
	}

	var limiter *rate.Limiter
	if params.RPS > 0 {
		burst := max(int(params.RPS), 1)
		limiter = rate.NewLimiter(rate.Limit(params.RPS), burst)
	}

	return &Sweeper{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:    params.Spec,
		posts:   posts,
		queue:   queue,
		locker:  locker,
		limiter: limiter,
		lockTTL: params.LockTTL,
		log:     logger.OrNop(log).Named("sweep"),
	}
}

// Start registers the sweep and runs one immediately in the background.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.runLogged(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info("sweep scheduled", zap.String("spec", s.spec))

	s.runWG.Add(1)
	go func() {
		defer s.runWG.Done()
		s.runLogged(ctx)
	}()
	return nil
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.runWG.Wait()
	s.log.Info("sweep stopped")
}

func (s *Sweeper) runLogged(ctx context.Context) {
	n, err := s.Run(ctx)
	if err != nil {
		s.log.Error("sweep failed", zap.Int("enqueued", n), zap.Error(err))
		return
	}
	s.log.Info("sweep complete", zap.Int("enqueued", n))
}

// Run enqueues every open post once and reports how many were enqueued. When
// another instance holds the sweep lock it returns (0, nil).
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
		switch {
		case err != nil:
			s.log.Warn("sweep lock unavailable, sweeping unlocked", zap.Error(err))
		case !ok:
			s.log.Debug("sweep running elsewhere, skipping")
			return 0, nil
		default:
			defer release()
		}
	}

	n := 0
	err := s.posts.ForEachOpenPost(ctx, func(p profile.Post) error {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		s.queue.EnqueuePost(p.ID)
		n++
		return nil
	})
	return n, err
}
