package usecase_test

import (
	"context"
	"errors"
	"sync"

	"conversion-tracking-service/internal/identity"
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"
)

// fakeDirect records direct invocations.
type fakeDirect struct {
	mu      sync.Mutex
	TrackFn func(event string, p domain.EventPayload) error
	tracks  []domain.EventPayload
	pages   []domain.EventPayload
	idents  []identity.Hashed
}

func (f *fakeDirect) Track(ctx context.Context, event string, p domain.EventPayload, page domain.PageContext) error {
	if f.TrackFn != nil {
		if err := f.TrackFn(event, p); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, p)
	return nil
}

func (f *fakeDirect) Page(ctx context.Context, p domain.EventPayload, page domain.PageContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, p)
	return nil
}

func (f *fakeDirect) Identify(ctx context.Context, h identity.Hashed, page domain.PageContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idents = append(f.idents, h)
	return nil
}

func (f *fakeDirect) Tracks() []domain.EventPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EventPayload(nil), f.tracks...)
}

func (f *fakeDirect) Identifies() []identity.Hashed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]identity.Hashed(nil), f.idents...)
}

// fakeCollector is a collector handle whose shape can be switched mid-test.
type fakeCollector struct {
	mu        sync.Mutex
	direct    ports.DirectCollector
	ready     bool
	queue     []domain.Command
	EnqueueFn func(cmd domain.Command) error
}

func (f *fakeCollector) Direct() (ports.DirectCollector, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.direct, f.direct != nil
}

func (f *fakeCollector) Enqueue(cmd domain.Command) error {
	if f.EnqueueFn != nil {
		return f.EnqueueFn(cmd)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, cmd)
	return nil
}

func (f *fakeCollector) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeCollector) upgrade(d ports.DirectCollector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = d
	f.ready = true
}

func (f *fakeCollector) Queued() []domain.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Command(nil), f.queue...)
}

type panickingDirect struct{ fakeDirect }

func (p *panickingDirect) Track(ctx context.Context, event string, pl domain.EventPayload, page domain.PageContext) error {
	panic("collector script crashed")
}

// fakeObserver counts observer callbacks.
type fakeObserver struct {
	mu        sync.Mutex
	attempted map[string]int
	confirmed int
	timedOut  int
	failed    map[string]int
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{attempted: map[string]int{}, failed: map[string]int{}}
}

func (o *fakeObserver) Attempted(kind domain.EventKind, verb domain.Verb, channel string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempted[channel]++
}

func (o *fakeObserver) Confirmed(kind domain.EventKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.confirmed++
}

func (o *fakeObserver) TimedOut(kind domain.EventKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timedOut++
}

func (o *fakeObserver) Failed(kind domain.EventKind, stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed[stage]++
}

func (o *fakeObserver) snapshot() (confirmed, timedOut int, failed map[string]int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f := map[string]int{}
	for k, v := range o.failed {
		f[k] = v
	}
	return o.confirmed, o.timedOut, f
}

var errCollectorDown = errors.New("collector down")
