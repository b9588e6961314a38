// Package poller runs a fixed-period status reconciliation schedule.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller invokes a tick function at a fixed period. A failed tick is logged
// and the schedule keeps going; ticks never overlap because each one
// completes before the next is taken off the ticker.
type Poller struct {
	interval time.Duration
	tick     func(context.Context) error
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a stopped poller. A non-positive interval falls back to one
// second.
func New(interval time.Duration, tick func(context.Context) error, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{interval: interval, tick: tick, logger: logger}
}

// Start begins the schedule. It is a no-op while the poller is already
// running. The context bounds the schedule's lifetime.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done

	go p.loop(ctx, done)
}

// Stop halts the schedule. It only signals cancellation: an in-flight tick
// runs to completion, so Stop is safe to call from inside a tick. Calling
// Stop on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Running reports whether the schedule is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				p.logger.Warn("status poll failed", slog.String("error", err.Error()))
			}
		}
	}
}
