package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingHandler struct {
	mu    sync.Mutex
	runs  map[Key]int
	gate  chan struct{}
	start chan Key
}

func newCountingHandler() *countingHandler {
	return &countingHandler{runs: map[Key]int{}}
}

func (h *countingHandler) handle(ctx context.Context, k Key) error {
	if h.start != nil {
		h.start <- k
	}
	if h.gate != nil {
		select {
		case <-h.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.mu.Lock()
	h.runs[k]++
	h.mu.Unlock()
	return nil
}

func (h *countingHandler) count(k Key) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[k]
}

func waitIdle(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.WaitIdle(ctx); err != nil {
		t.Fatalf("dispatcher did not go idle: %v", err)
	}
}

func TestDispatcher_CoalescesQueuedKeys(t *testing.T) {
	h := newCountingHandler()
	d := NewDispatcher(h.handle, nil, DispatcherParams{Workers: 2}, nil)

	a := Key{Kind: KindSeeker, ID: uuid.New()}
	b := Key{Kind: KindPost, ID: uuid.New()}
	for range 5 {
		d.Enqueue(a)
	}
	d.Enqueue(b)

	if got := d.Depth(); got != 2 {
		t.Fatalf("expected depth 2, got %d", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()
	waitIdle(t, d)

	if h.count(a) != 1 || h.count(b) != 1 {
		t.Fatalf("expected one run each, got a=%d b=%d", h.count(a), h.count(b))
	}
}

func TestDispatcher_RerunsKeyEnqueuedWhileRunning(t *testing.T) {
	h := newCountingHandler()
	h.gate = make(chan struct{})
	h.start = make(chan Key, 4)
	d := NewDispatcher(h.handle, nil, DispatcherParams{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	k := Key{Kind: KindPost, ID: uuid.New()}
	d.Enqueue(k)
	<-h.start

	for range 3 {
		d.Enqueue(k)
	}
	if got := d.Depth(); got != 0 {
		t.Fatalf("running key must not be queued again, depth=%d", got)
	}

	h.gate <- struct{}{}
	<-h.start
	h.gate <- struct{}{}
	waitIdle(t, d)

	if got := h.count(k); got != 2 {
		t.Fatalf("expected exactly one rerun, got %d runs", got)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	d := NewDispatcher(newCountingHandler().handle, nil, DispatcherParams{Workers: 1, InitialCapacity: 1}, nil)

	done := make(chan struct{})
	go func() {
		for range 5000 {
			d.EnqueueSeeker(uuid.New())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked without running workers")
	}
	if got := d.Depth(); got != 5000 {
		t.Fatalf("expected depth 5000, got %d", got)
	}
}

func TestDispatcher_IgnoresNilIDs(t *testing.T) {
	d := NewDispatcher(newCountingHandler().handle, nil, DispatcherParams{}, nil)
	d.EnqueuePost(uuid.Nil)
	if d.Depth() != 0 {
		t.Fatal("nil id must be ignored")
	}
}

type flakyLocker struct {
	denials atomic.Int32
	keys    sync.Map
}

func (l *flakyLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool, error) {
	l.keys.Store(key, true)
	if l.denials.Add(-1) >= 0 {
		return nil, false, nil
	}
	return func() {}, true, nil
}

func TestDispatcher_RetriesWhenLockedElsewhere(t *testing.T) {
	h := newCountingHandler()
	locker := &flakyLocker{}
	locker.denials.Store(1)
	d := NewDispatcher(h.handle, locker, DispatcherParams{Workers: 1, RetryDelay: 10 * time.Millisecond}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	k := Key{Kind: KindSeeker, ID: uuid.New()}
	d.Enqueue(k)

	deadline := time.Now().Add(2 * time.Second)
	for h.count(k) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("locked key was never retried")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := locker.keys.Load("recompute:lock:" + k.String()); !ok {
		t.Fatalf("expected lock key for %s", k)
	}
}

type failingLocker struct{}

func (failingLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestDispatcher_RunsUnlockedWhenLockErrors(t *testing.T) {
	h := newCountingHandler()
	d := NewDispatcher(h.handle, failingLocker{}, DispatcherParams{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	k := Key{Kind: KindPost, ID: uuid.New()}
	d.Enqueue(k)
	waitIdle(t, d)

	if h.count(k) != 1 {
		t.Fatalf("expected a run despite lock error, got %d", h.count(k))
	}
}

func TestDispatcher_HandlerPanicDoesNotKillWorker(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(func(context.Context, Key) error {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}, nil, DispatcherParams{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	defer d.Stop()

	d.EnqueuePost(uuid.New())
	d.EnqueuePost(uuid.New())
	waitIdle(t, d)

	if calls.Load() != 2 {
		t.Fatalf("expected both keys handled, got %d", calls.Load())
	}
}

func TestDispatcher_StopDropsQueuedAndRefusesNew(t *testing.T) {
	h := newCountingHandler()
	d := NewDispatcher(h.handle, nil, DispatcherParams{Workers: 1}, nil)
	d.EnqueueSeeker(uuid.New())
	d.EnqueueSeeker(uuid.New())

	d.Stop()
	d.Stop()

	if d.Depth() != 0 {
		t.Fatalf("expected empty queue after stop, got %d", d.Depth())
	}
	d.EnqueueSeeker(uuid.New())
	if d.Depth() != 0 {
		t.Fatal("enqueue after stop must be a no-op")
	}
}
