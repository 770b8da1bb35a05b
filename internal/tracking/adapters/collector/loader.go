package collector

import (
	"context"
	"time"

	"conversion-tracking-service/internal/tracking/core/ports"

	"go.uber.org/zap"
)

// ConnectFunc brings up a direct collector, e.g. by checking broker
// reachability.
type ConnectFunc func(ctx context.Context) (ports.DirectCollector, error)

type LoaderConfig struct {
	RetryInterval time.Duration
	FlushInterval time.Duration
}

// Loader upgrades the global handle once the direct collector is reachable,
// then keeps flushing commands queued after the upgrade.
type Loader struct {
	global  *Global
	connect ConnectFunc
	cfg     LoaderConfig
	logger  *zap.Logger
}

func NewLoader(global *Global, connect ConnectFunc, cfg LoaderConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 2 * time.Second
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Loader{
		global:  global,
		connect: connect,
		cfg:     cfg,
		logger:  logger.Named("loader"),
	}
}

// Run blocks until ctx is done.
func (l *Loader) Run(ctx context.Context) {
	l.global.MarkLoading()

	direct, ok := l.connectWithRetry(ctx)
	if !ok {
		return
	}

	if err := l.global.Upgrade(ctx, direct); err != nil {
		l.logger.Error("initial queue drain failed", zap.Error(err))
	}
	l.logger.Info("collector upgraded")

	ticker := time.NewTicker(l.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// last chance for anything queued during shutdown
			if _, err := l.global.Drain(context.WithoutCancel(ctx)); err != nil {
				l.logger.Error("final queue drain failed", zap.Error(err))
			}
			return
		case <-ticker.C:
			if _, err := l.global.Drain(ctx); err != nil {
				l.logger.Error("queue flush failed", zap.Error(err))
			}
		}
	}
}

func (l *Loader) connectWithRetry(ctx context.Context) (ports.DirectCollector, bool) {
	for {
		direct, err := l.connect(ctx)
		if err == nil {
			return direct, true
		}
		l.logger.Warn("collector not reachable, retrying",
			zap.Duration("retry_in", l.cfg.RetryInterval),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(l.cfg.RetryInterval):
		}
	}
}
