package views

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval matches the dashboard's auto-refresh.
const DefaultPollInterval = 30 * time.Second

// Poller calls refresh on a fixed interval until Stop or the parent context
// ends.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context)
	logger   *zap.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// StartPoller launches the loop. The first refresh happens after one
// interval; callers load once themselves before starting.
func StartPoller(ctx context.Context, interval time.Duration, refresh func(context.Context), logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Poller{
		interval: interval,
		refresh:  refresh,
		logger:   logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Debug("Poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Stop is idempotent and returns once the loop has exited.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
	<-p.done
}

// Done is closed when the loop exits.
func (p *Poller) Done() <-chan struct{} { return p.done }
