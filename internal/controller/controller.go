// Package controller orchestrates start/stop requests against the remote
// control API and keeps the locally cached run status reconciled with the
// backend through a status poller.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lab-ups/upsmon/internal/api/transmission"
	"github.com/lab-ups/upsmon/internal/poller"
	"github.com/lab-ups/upsmon/internal/rxlog"
)

// Option configures the controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPollInterval overrides the one second status poll period.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Controller) {
		c.pollInterval = interval
	}
}

// Controller gates start requests on client-side validation, refreshes the
// cached RunStatus after every successful round-trip, and runs the status
// poller only while the backend reports a job running.
type Controller struct {
	api          *transmission.Client
	events       *rxlog.Log
	poller       *poller.Poller
	pollInterval time.Duration
	logger       *slog.Logger

	baseCtx context.Context

	mu      sync.Mutex
	status  transmission.RunStatus
	lastErr error
}

// New creates a controller around the given API client and event log.
func New(api *transmission.Client, events *rxlog.Log, opts ...Option) *Controller {
	c := &Controller{
		api:          api,
		events:       events,
		pollInterval: time.Second,
		logger:       slog.Default(),
		baseCtx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.poller = poller.New(c.pollInterval, c.refresh, c.logger)
	return c
}

// Start primes the cache with one immediate status fetch and arms the poller
// if the backend reports a job already running. The context bounds the
// poller's lifetime.
func (c *Controller) Start(ctx context.Context) {
	c.baseCtx = ctx
	if err := c.refresh(ctx); err != nil {
		c.logger.Warn("initial status fetch failed", slog.String("error", err.Error()))
	}
}

// Shutdown stops the status poller.
func (c *Controller) Shutdown() {
	c.poller.Stop()
}

// RequestStart validates the parameters, issues the start call, then
// refreshes status so the cache reflects the backend's truth rather than an
// optimistic local flip. Validation failures never reach the network.
func (c *Controller) RequestStart(ctx context.Context, req *transmission.StartRequest) (*transmission.RunStatus, error) {
	c.setLastError(nil)

	if err := ValidateStart(req); err != nil {
		c.setLastError(err)
		return nil, err
	}

	if _, err := c.api.Start(ctx, req); err != nil {
		c.setLastError(err)
		return nil, err
	}
	c.logger.Info("transmission started",
		slog.String("dst_ip", req.DstIP),
		slog.Int("dst_port", req.DstPort),
		slog.Int("src_port", req.SrcPort),
		slog.String("site_id", req.SiteID))

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	st := c.CachedStatus()
	return &st, nil
}

// RequestStop halts the job and refreshes status. The event log is left
// untouched: operators read the last session's responses after a stop.
func (c *Controller) RequestStop(ctx context.Context) (*transmission.RunStatus, error) {
	c.setLastError(nil)

	if err := c.api.Stop(ctx); err != nil {
		c.setLastError(err)
		return nil, err
	}
	c.logger.Info("transmission stopped")

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	st := c.CachedStatus()
	return &st, nil
}

// Status performs a single status fetch. On failure the previous cached value
// stays in place: stale but available.
func (c *Controller) Status(ctx context.Context) (*transmission.RunStatus, error) {
	if err := c.refresh(ctx); err != nil {
		return nil, err
	}
	st := c.CachedStatus()
	return &st, nil
}

// CachedStatus returns the last status observed from the backend, possibly
// stale.
func (c *Controller) CachedStatus() transmission.RunStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ClearLog empties the event log. Allowed at any time, whether or not a
// transmission is running.
func (c *Controller) ClearLog() {
	c.events.Clear()
}

// LastError returns the most recent operator-visible error. Latest wins;
// there is no history. A successful start or stop request resets it.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// PollerRunning reports whether the status poller is active.
func (c *Controller) PollerRunning() bool {
	return c.poller.Running()
}

// refresh fetches status and reconciles the cache and the poller. Used both
// directly and as the poller's tick.
func (c *Controller) refresh(ctx context.Context) error {
	st, err := c.api.Status(ctx)
	if err != nil {
		c.setLastError(err)
		return err
	}

	c.mu.Lock()
	c.status = *st
	c.mu.Unlock()

	// The poller runs only while the job does.
	if st.Running {
		c.poller.Start(c.baseCtx)
	} else {
		c.poller.Stop()
	}
	return nil
}

func (c *Controller) setLastError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}
