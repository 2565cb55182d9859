package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"parttime-match/internal/infrastructure/cache"
	"parttime-match/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangesChannel carries profile change events between instances, so a write
// accepted by one instance can trigger recomputation on the others.
const ChangesChannel = "match:changes"

// ChangeEvent.Origin names the publishing instance so it can skip its own
// events.
type ChangeEvent struct {
	Kind   Kind      `json:"kind"`
	ID     uuid.UUID `json:"id"`
	Origin string    `json:"origin,omitempty"`
}

// PubSub is the slice of cache.Redis the change feed needs.
type PubSub interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channel string, handle func(payload []byte)) error
}

type Enqueuer interface {
	Enqueue(k Key)
}

// Subscriber feeds change events from Redis into the local dispatcher.
type Subscriber struct {
	bus    PubSub
	queue  Enqueuer
	origin string
	log    *zap.Logger
}

func NewSubscriber(bus PubSub, queue Enqueuer, origin string, log *zap.Logger) *Subscriber {
	return &Subscriber{bus: bus, queue: queue, origin: origin, log: logger.OrNop(log).Named("changes")}
}

// Run blocks until ctx ends, resubscribing after transient errors. Without
// Redis it returns nil straight away.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := s.bus.Subscribe(ctx, ChangesChannel, s.handle)
		switch {
		case errors.Is(err, cache.ErrUnavailable):
			s.log.Info("change feed disabled, redis unavailable")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			s.log.Warn("change feed dropped, resubscribing", zap.Duration("backoff", backoff), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}
}

func (s *Subscriber) handle(payload []byte) {
	var evt ChangeEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		s.log.Warn("bad change event", zap.ByteString("payload", payload), zap.Error(err))
		return
	}
	if evt.ID == uuid.Nil || (evt.Kind != KindSeeker && evt.Kind != KindPost) {
		s.log.Warn("bad change event", zap.ByteString("payload", payload))
		return
	}
	if s.origin != "" && evt.Origin == s.origin {
		return
	}
	s.queue.Enqueue(Key{Kind: evt.Kind, ID: evt.ID})
}

// Broadcaster enqueues locally and announces the change to other instances.
// It satisfies the profile use case's enqueuer.
type Broadcaster struct {
	local  Enqueuer
	bus    PubSub
	origin string
	log    *zap.Logger
}

func NewBroadcaster(local Enqueuer, bus PubSub, origin string, log *zap.Logger) *Broadcaster {
	return &Broadcaster{local: local, bus: bus, origin: origin, log: logger.OrNop(log).Named("changes")}
}

func (b *Broadcaster) EnqueueSeeker(id uuid.UUID) { b.announce(Key{Kind: KindSeeker, ID: id}) }
func (b *Broadcaster) EnqueuePost(id uuid.UUID)   { b.announce(Key{Kind: KindPost, ID: id}) }

func (b *Broadcaster) announce(k Key) {
	b.local.Enqueue(k)
	if b.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := b.bus.Publish(ctx, ChangesChannel, ChangeEvent{Kind: k.Kind, ID: k.ID, Origin: b.origin}); err != nil {
		b.log.Debug("change publish failed", zap.String("key", k.String()), zap.Error(err))
	}
}
