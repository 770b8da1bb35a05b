package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"go.uber.org/zap"
)

const (
	ChannelDirect = "direct"
	ChannelQueue  = "queue"
	// ChannelLost means even the queue append failed.
	ChannelLost = "lost"
)

type DeliveryState int32

const (
	StateQueued DeliveryState = iota
	StateConfirmed
)

func (s DeliveryState) String() string {
	if s == StateConfirmed {
		return "confirmed"
	}
	return "queued"
}

// Delivery tracks one dispatched command. It moves from queued to confirmed
// at most once; later confirmations are no-ops.
type Delivery struct {
	Kind    domain.EventKind
	Verb    domain.Verb
	EventID string
	// Channel is the path taken by the immediate attempt.
	Channel string

	state    atomic.Int32
	attempts atomic.Int32
	done     chan struct{}
}

func newDelivery(kind domain.EventKind) *Delivery {
	return &Delivery{Kind: kind, done: make(chan struct{})}
}

func (d *Delivery) confirm() bool {
	return d.state.CompareAndSwap(int32(StateQueued), int32(StateConfirmed))
}

func (d *Delivery) State() DeliveryState {
	return DeliveryState(d.state.Load())
}

func (d *Delivery) Attempts() int {
	return int(d.attempts.Load())
}

// Done is closed once the deferred confirmation attempts have finished.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// BuildCommand produces the command for one attempt. It runs before every
// attempt so callers can patch late data into the payload.
type BuildCommand func(ctx context.Context) domain.Command

type DispatcherConfig struct {
	// ReadyTimeout bounds the wait for the collector to become ready.
	ReadyTimeout time.Duration
	PollInterval time.Duration
	// SettleDelay separates the readiness attempt from the final one.
	SettleDelay time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		ReadyTimeout: 5 * time.Second,
		PollInterval: 100 * time.Millisecond,
		SettleDelay:  2 * time.Second,
	}
}

type Dispatcher struct {
	collector ports.CollectorPort
	observer  ports.DispatchObserver
	logger    *zap.Logger
	cfg       DispatcherConfig
	wg        sync.WaitGroup
}

func NewDispatcher(collector ports.CollectorPort, observer ports.DispatchObserver, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultDispatcherConfig()
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = def.ReadyTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	return &Dispatcher{
		collector: collector,
		observer:  observer,
		logger:    logger.Named("dispatcher"),
		cfg:       cfg,
	}
}

// Dispatch delivers a command immediately (direct call or queue append) and
// then, in the background, waits for the collector to become ready and
// confirms the delivery. It never fails: the queue append of the immediate
// attempt is what guarantees at-least-once delivery. The background work is
// detached from ctx cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, kind domain.EventKind, build BuildCommand) *Delivery {
	del := newDelivery(kind)

	cmd := build(ctx)
	del.Verb = cmd.Verb
	del.EventID = cmd.EventID()
	del.Channel = d.attempt(ctx, del, cmd, false)

	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go d.confirmLater(bg, del, build)

	return del
}

// Wait blocks until every background confirmation has finished or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) confirmLater(ctx context.Context, del *Delivery, build BuildCommand) {
	defer d.wg.Done()
	defer close(del.done)

	if del.State() == StateConfirmed {
		return
	}

	if !d.waitReady() {
		d.observer.TimedOut(del.Kind)
		d.logger.Info("collector not ready before timeout, relying on queue",
			zap.String("kind", string(del.Kind)),
			zap.String("event_id", del.EventID),
		)
	}
	d.attempt(ctx, del, build(ctx), true)

	if del.State() == StateConfirmed {
		return
	}

	time.Sleep(d.cfg.SettleDelay)
	d.attempt(ctx, del, build(ctx), true)
}

func (d *Dispatcher) waitReady() bool {
	if d.collector.Ready() {
		return true
	}

	timer := time.NewTimer(d.cfg.ReadyTimeout)
	defer timer.Stop()
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if d.collector.Ready() {
				return true
			}
		case <-timer.C:
			return false
		}
	}
}

// attempt tries the direct collector and falls back to the queue. A
// confirmation attempt (confirmOnly) only uses the direct path; it never
// re-queues since the immediate attempt already did.
func (d *Dispatcher) attempt(ctx context.Context, del *Delivery, cmd domain.Command, confirmOnly bool) (channel string) {
	del.attempts.Add(1)

	defer func() {
		if r := recover(); r != nil {
			d.observer.Failed(del.Kind, "direct")
			d.logger.Error("collector invocation panicked",
				zap.String("kind", string(del.Kind)),
				zap.String("event_id", del.EventID),
				zap.Any("panic", r),
			)
			if confirmOnly {
				channel = ""
				return
			}
			channel = d.enqueue(del, cmd)
		}
	}()

	direct, ok := d.collector.Direct()
	if !ok {
		if confirmOnly {
			return ""
		}
		return d.enqueue(del, cmd)
	}

	if err := ports.Invoke(ctx, direct, cmd); err != nil {
		d.observer.Failed(del.Kind, "direct")
		d.logger.Error("collector invocation failed",
			zap.String("kind", string(del.Kind)),
			zap.String("verb", string(cmd.Verb)),
			zap.String("event_id", del.EventID),
			zap.Error(err),
		)
		if confirmOnly {
			return ""
		}
		return d.enqueue(del, cmd)
	}

	d.observer.Attempted(del.Kind, cmd.Verb, ChannelDirect)
	if del.confirm() {
		d.observer.Confirmed(del.Kind)
	}
	return ChannelDirect
}

func (d *Dispatcher) enqueue(del *Delivery, cmd domain.Command) (channel string) {
	defer func() {
		if r := recover(); r != nil {
			d.observer.Failed(del.Kind, "queue")
			d.logger.Error("CRITICAL: collector queue append panicked",
				zap.String("kind", string(del.Kind)),
				zap.String("event_id", del.EventID),
				zap.Any("panic", r),
			)
			channel = ChannelLost
		}
	}()

	if err := d.collector.Enqueue(cmd); err != nil {
		d.observer.Failed(del.Kind, "queue")
		d.logger.Error("CRITICAL: collector queue append failed",
			zap.String("kind", string(del.Kind)),
			zap.String("event_id", del.EventID),
			zap.Error(err),
		)
		return ChannelLost
	}

	d.observer.Attempted(del.Kind, cmd.Verb, ChannelQueue)
	return ChannelQueue
}
