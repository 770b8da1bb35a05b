package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"go.uber.org/zap"
)

var ErrEmptyCommand = errors.New("collector command has no verb")

// Global is the process-wide collector handle. Until Upgrade it only
// accepts queued commands; after Upgrade the direct collector is exposed and
// the queue is drained into it in order.
type Global struct {
	mu      sync.Mutex
	queue   []domain.Command
	direct  ports.DirectCollector
	loading bool
	// dead holds commands the sink rejected for good.
	dead []domain.Command

	logger *zap.Logger
}

func NewGlobal(logger *zap.Logger) *Global {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Global{logger: logger.Named("collector")}
}

var _ ports.CollectorPort = (*Global)(nil)

func (g *Global) Direct() (ports.DirectCollector, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.direct, g.direct != nil
}

func (g *Global) Enqueue(cmd domain.Command) error {
	if cmd.Verb == "" {
		return ErrEmptyCommand
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.queue == nil {
		g.queue = make([]domain.Command, 0, 8)
	}
	g.queue = append(g.queue, cmd)
	return nil
}

// Ready reports that the collector is upgraded or its loader is running.
func (g *Global) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.direct != nil || g.loading
}

func (g *Global) MarkLoading() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = true
}

func (g *Global) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// Upgrade installs the direct collector and drains the pending queue.
func (g *Global) Upgrade(ctx context.Context, direct ports.DirectCollector) error {
	g.mu.Lock()
	g.direct = direct
	g.loading = false
	g.mu.Unlock()

	_, err := g.Drain(ctx)
	return err
}

// DeadLetters returns the commands dropped from the queue because the sink
// rejected them.
func (g *Global) DeadLetters() []domain.Command {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Command(nil), g.dead...)
}

// Drain delivers queued commands to the direct collector in order and
// returns how many were delivered. A rejected command is moved to the dead
// letters and draining continues; on any other failure the undelivered
// commands are put back at the head of the queue.
func (g *Global) Drain(ctx context.Context) (int, error) {
	g.mu.Lock()
	direct := g.direct
	pending := g.queue
	g.queue = nil
	g.mu.Unlock()

	if direct == nil {
		g.requeue(pending)
		return 0, nil
	}

	delivered := 0
	for i, cmd := range pending {
		if err := ctx.Err(); err != nil {
			g.requeue(pending[i:])
			return delivered, err
		}
		err := ports.Invoke(ctx, direct, cmd)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, ports.ErrRejected), errors.Is(err, ports.ErrUnknownVerb):
			g.deadLetter(cmd)
			g.logger.Error("collector rejected queued command, dropped",
				zap.String("verb", string(cmd.Verb)),
				zap.String("event_id", cmd.EventID()),
				zap.Error(err),
			)
		default:
			g.requeue(pending[i:])
			g.logger.Warn("queue drain interrupted",
				zap.String("verb", string(cmd.Verb)),
				zap.String("event_id", cmd.EventID()),
				zap.Int("remaining", len(pending)-i),
				zap.Error(err),
			)
			return delivered, fmt.Errorf("drain collector queue: %w", err)
		}
	}

	if delivered > 0 {
		g.logger.Debug("queue drained", zap.Int("delivered", delivered))
	}
	return delivered, nil
}

func (g *Global) deadLetter(cmd domain.Command) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dead = append(g.dead, cmd)
}

func (g *Global) requeue(cmds []domain.Command) {
	if len(cmds) == 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(append(make([]domain.Command, 0, len(cmds)+len(g.queue)), cmds...), g.queue...)
}
