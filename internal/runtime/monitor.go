// Package runtime assembles the monitoring pipeline: the control API client,
// the bounded event log, the stream session with its keeper, the status
// controller, and the optional local monitor API.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lab-ups/upsmon/internal/api/transmission"
	"github.com/lab-ups/upsmon/internal/config"
	"github.com/lab-ups/upsmon/internal/controller"
	"github.com/lab-ups/upsmon/internal/monitor"
	"github.com/lab-ups/upsmon/internal/rxlog"
	"github.com/lab-ups/upsmon/internal/stream"
)

// Monitor is the main entry point for running the transmission monitor. It
// can be embedded in larger applications or run standalone.
type Monitor struct {
	cfg    *config.Config
	logger *slog.Logger

	API        *transmission.Client
	Events     *rxlog.Log
	Session    *stream.Session
	Controller *controller.Controller

	serveAPI bool
	server   *monitor.Server

	mu         sync.Mutex
	cancel     context.CancelFunc
	keeperDone chan struct{}
}

// New wires the pipeline from configuration. Nothing runs until Start.
func New(cfg *config.Config, opts ...Option) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}

	m := &Monitor{
		cfg:      cfg,
		logger:   slog.Default(),
		serveAPI: true,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	m.API = transmission.NewClient(transmission.WithBaseURL(cfg.Backend.BaseURL))
	m.Events = rxlog.NewLog(cfg.Log.Capacity)
	m.Session = stream.New(m.API.StreamURL(), m.Events, stream.WithLogger(m.logger))
	m.Controller = controller.New(m.API, m.Events,
		controller.WithLogger(m.logger),
		controller.WithPollInterval(cfg.PollInterval()))

	if m.serveAPI {
		m.server = monitor.New(cfg.Monitor.Port, m.Controller, m.Events, m.Session, m.logger)
	}

	return m, nil
}

// Start primes the status cache, opens the event stream, and begins serving
// the monitor API when enabled. The context bounds every background task.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, m.cancel = context.WithCancel(ctx)

	m.Controller.Start(ctx)

	if err := m.Session.Open(ctx); err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}

	m.keeperDone = make(chan struct{})
	go m.keepStreamOpen(ctx, m.keeperDone)

	if m.server != nil {
		m.server.Start()
	}

	m.logger.Info("monitor started",
		slog.String("backend", m.cfg.Backend.BaseURL),
		slog.Int("log_capacity", m.cfg.Log.Capacity))
	return nil
}

// Shutdown stops the keeper, the poller, the stream, and the monitor API.
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("shutting down monitor")

	if m.cancel != nil {
		m.cancel()
	}
	if m.keeperDone != nil {
		<-m.keeperDone
		m.keeperDone = nil
	}

	m.Controller.Shutdown()
	m.Session.Close()

	if m.server != nil {
		if err := m.server.Shutdown(ctx); err != nil {
			m.logger.Error("failed to shutdown monitor API", slog.String("error", err.Error()))
			return err
		}
	}

	m.logger.Info("monitor shutdown complete")
	return nil
}

// StartDefaults returns the configured prefilled start parameters.
func (m *Monitor) StartDefaults() transmission.StartRequest {
	return transmission.StartRequest{
		DstIP:   m.cfg.Start.DstIP,
		DstPort: m.cfg.Start.DstPort,
		SrcPort: m.cfg.Start.SrcPort,
		SiteID:  m.cfg.Start.SiteID,
	}
}

// keepStreamOpen reopens the session after it settles idle. The session never
// reconnects on its own; this keeper is the only reopen path.
func (m *Monitor) keepStreamOpen(ctx context.Context, done chan struct{}) {
	defer close(done)

	delay := m.cfg.ReopenDelay()
	if delay <= 0 {
		delay = 2 * time.Second
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.Session.State() != stream.StateIdle {
				continue
			}
			if err := m.Session.Open(ctx); err != nil {
				m.logger.Warn("stream reopen failed", slog.String("error", err.Error()))
			}
		}
	}
}
