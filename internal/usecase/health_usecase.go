package usecase

import (
	"context"
	"time"

	"parttime-match/internal/domain"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueDepther reports how many recompute keys are waiting.
type QueueDepther interface {
	Depth() int
}

type HealthUsecase interface {
	GetStatus(ctx context.Context) domain.HealthStatus
}

type Health struct {
	db    Pinger
	redis Pinger
	queue QueueDepther
	now   func() time.Time
}

// NewHealthUsecase accepts a nil redis when the service runs without one.
func NewHealthUsecase(db Pinger, redis Pinger, queue QueueDepther) *Health {
	return &Health{db: db, redis: redis, queue: queue, now: time.Now}
}

func (u *Health) GetStatus(ctx context.Context) domain.HealthStatus {
	st := domain.HealthStatus{ServerTime: u.now().UTC()}

	if u.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		st.DatabaseHealthy = u.db.Ping(pingCtx) == nil
		cancel()
	}

	if u.redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		st.RedisHealthy = u.redis.Ping(pingCtx) == nil
		cancel()
	}

	if u.queue != nil {
		st.QueueDepth = u.queue.Depth()
	}
	return st
}
