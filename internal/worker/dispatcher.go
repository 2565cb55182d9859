// Package worker runs recomputation off the request path: a coalescing
// dispatcher, a periodic sweep and a Redis change-event subscriber.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"parttime-match/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const (
	KindSeeker Kind = "seeker"
	KindPost   Kind = "post"
)

// Key identifies one unit of recompute work.
type Key struct {
	Kind Kind
	ID   uuid.UUID
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

type Handler func(ctx context.Context, k Key) error

// Locker takes a cross-instance lock. ok=false means another holder has it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type keyState uint8

const (
	stateQueued keyState = iota + 1
	stateRunning
	stateRunningDirty
)

type DispatcherParams struct {
	Workers int
	// InitialCapacity only presizes the queue; it never bounds it.
	InitialCapacity int
	LockTTL         time.Duration
	RetryDelay      time.Duration
}

// Dispatcher is a fixed-size worker pool keyed by seeker or post id. A key
// waiting in the queue is never queued twice, and a key enqueued while it
// runs is run exactly once more afterwards, so duplicate triggers collapse
// and the last trigger always sees a fresh run.
type Dispatcher struct {
	workers    int
	handler    Handler
	locker     Locker
	lockTTL    time.Duration
	retryDelay time.Duration
	log        *zap.Logger

	mu      sync.Mutex
	pending []Key
	state   map[Key]keyState
	wake    chan struct{}
	closed  bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDispatcher(handler Handler, locker Locker, params DispatcherParams, log *zap.Logger) *Dispatcher {
	if params.Workers <= 0 {
		params.Workers = 1
	}
	if params.LockTTL <= 0 {
		params.LockTTL = time.Minute
	}
	if params.RetryDelay <= 0 {
		params.RetryDelay = 2 * time.Second
	}
	return &Dispatcher{
		workers:    params.Workers,
		handler:    handler,
		locker:     locker,
		lockTTL:    params.LockTTL,
		retryDelay: params.RetryDelay,
		log:        logger.OrNop(log).Named("dispatcher"),
		pending:    make([]Key, 0, max(params.InitialCapacity, 0)),
		state:      map[Key]keyState{},
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (d *Dispatcher) EnqueueSeeker(id uuid.UUID) { d.Enqueue(Key{Kind: KindSeeker, ID: id}) }
func (d *Dispatcher) EnqueuePost(id uuid.UUID)   { d.Enqueue(Key{Kind: KindPost, ID: id}) }

// Enqueue never blocks the caller.
func (d *Dispatcher) Enqueue(k Key) {
	if d == nil || k.ID == uuid.Nil {
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	switch d.state[k] {
	case stateQueued, stateRunningDirty:
	case stateRunning:
		d.state[k] = stateRunningDirty
	default:
		d.state[k] = stateQueued
		d.pending = append(d.pending, k)
	}
	d.mu.Unlock()

	d.signal()
}

// Depth is the number of keys waiting for a worker.
func (d *Dispatcher) Depth() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Dispatcher) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go func() {
			defer d.wg.Done()
			for {
				k, ok := d.next(ctx)
				if !ok {
					return
				}
				d.run(ctx, k)
			}
		}()
	}
	d.log.Info("dispatcher started", zap.Int("workers", d.workers))
}

// Stop refuses new work and waits for running keys to finish. Keys still in
// the queue are dropped; the periodic sweep picks their posts up again.
func (d *Dispatcher) Stop() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		dropped := len(d.pending)
		for _, k := range d.pending {
			delete(d.state, k)
		}
		d.pending = nil
		d.mu.Unlock()
		close(d.done)

		d.wg.Wait()
		d.log.Info("dispatcher stopped", zap.Int("dropped", dropped))
	})
}

// WaitIdle blocks until no key is queued or running.
func (d *Dispatcher) WaitIdle(ctx context.Context) error {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		d.mu.Lock()
		idle := len(d.state) == 0
		d.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) next(ctx context.Context) (Key, bool) {
	for {
		d.mu.Lock()
		if d.closed {
			d.mu.Unlock()
			return Key{}, false
		}
		if len(d.pending) > 0 {
			k := d.pending[0]
			d.pending = d.pending[1:]
			d.state[k] = stateRunning
			more := len(d.pending) > 0
			d.mu.Unlock()
			if more {
				d.signal()
			}
			return k, true
		}
		d.mu.Unlock()

		select {
		case <-ctx.Done():
			return Key{}, false
		case <-d.done:
			return Key{}, false
		case <-d.wake:
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, k Key) {
	retry := false
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("recompute panicked", zap.String("key", k.String()), zap.Any("panic", r))
		}
		d.finish(k, retry)
	}()

	if d.locker != nil {
		release, ok, err := d.locker.TryLock(ctx, "recompute:lock:"+k.String(), d.lockTTL)
		switch {
		case err != nil:
			d.log.Warn("recompute lock unavailable, running unlocked", zap.String("key", k.String()), zap.Error(err))
		case !ok:
			d.log.Debug("recompute locked elsewhere, retrying later", zap.String("key", k.String()))
			retry = true
			return
		default:
			defer release()
		}
	}

	start := time.Now()
	if err := d.handler(ctx, k); err != nil {
		d.log.Error("recompute failed", zap.String("key", k.String()), zap.Error(err))
		return
	}
	d.log.Debug("recompute done", zap.String("key", k.String()), zap.Duration("duration", time.Since(start)))
}

func (d *Dispatcher) finish(k Key, retry bool) {
	d.mu.Lock()
	st := d.state[k]
	delete(d.state, k)
	closed := d.closed
	d.mu.Unlock()

	if closed {
		return
	}
	if st == stateRunningDirty {
		d.Enqueue(k)
		return
	}
	if retry {
		time.AfterFunc(d.retryDelay, func() { d.Enqueue(k) })
	}
}
