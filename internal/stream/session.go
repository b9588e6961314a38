// Package stream consumes the transmitter's server-push event stream: a
// long-lived HTTP connection delivering named events (`ping` heartbeats and
// `udp-rx` data) in text-event framing.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lab-ups/upsmon/internal/rxlog"
)

// State is the lifecycle phase of a Session.
type State string

const (
	StateIdle       State = "IDLE"
	StateConnecting State = "CONNECTING"
	StateLive       State = "LIVE"
	StateFailed     State = "FAILED"
)

// ConnectionState is the liveness signal derived from the stream: a heartbeat
// flips it to Connected, any transport error or teardown flips it back.
// Nothing else is gated on it.
type ConnectionState string

const (
	Disconnected ConnectionState = "DISCONNECTED"
	Connected    ConnectionState = "CONNECTED"
)

// StreamError wraps a transport failure on the event source. It is never
// surfaced to the operator: the session degrades to Disconnected and can be
// reopened.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return "stream transport failure: " + e.Err.Error() }

func (e *StreamError) Unwrap() error { return e.Err }

// Sink receives normalized events in transport delivery order.
type Sink interface {
	Insert(rxlog.ReceivedEvent)
}

// Option configures the session.
type Option func(*Session)

// WithHTTPClient sets a custom HTTP client. The client must not carry a
// request timeout; the stream is expected to stay open indefinitely.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Session) {
		s.httpClient = httpClient
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session owns at most one live connection to the event-stream endpoint and
// pumps its udp-rx payloads through normalization into the sink. Transport
// failures tear the connection down and leave the session idle; the session
// never schedules its own reconnect.
type Session struct {
	url        string
	httpClient *http.Client
	sink       Sink
	logger     *slog.Logger

	mu        sync.Mutex
	state     State
	connState ConnectionState
	cancel    context.CancelFunc
	done      chan struct{}
}

// New creates an idle session bound to the given stream endpoint.
func New(url string, sink Sink, opts ...Option) *Session {
	s := &Session{
		url:  url,
		sink: sink,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:    slog.Default(),
		state:     StateIdle,
		connState: Disconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session's lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConnectionState returns the derived liveness signal.
func (s *Session) ConnectionState() ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState
}

// Open starts a connection attempt. It is a no-op unless the session is idle:
// a session holds at most one transport handle. The context bounds the
// connection's lifetime.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	s.state = StateConnecting
	s.cancel = cancel
	s.done = make(chan struct{})

	id := uuid.New().String()
	s.logger.Info("opening event stream", slog.String("session_id", id), slog.String("url", s.url))
	go s.run(req, id, s.done)
	return nil
}

// Close tears down any open transport handle and forces the session idle.
// Legal from any state, at any time.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.state = StateIdle
	s.connState = Disconnected
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// run performs the connection attempt and consumes the stream until the
// transport gives up. It owns the response body for the handle's lifetime.
func (s *Session) run(req *http.Request, id string, done chan struct{}) {
	defer close(done)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.fail(&StreamError{Err: err}, id)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.fail(&StreamError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}, id)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	// Increase buffer size for large hex payloads
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var currentEvent string

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines
		if line == "" {
			continue
		}

		// Parse event type
		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
			continue
		}

		// Parse data
		if strings.HasPrefix(line, "data: ") {
			data := strings.TrimPrefix(line, "data: ")
			s.dispatch(currentEvent, []byte(data))
		}
	}

	if err := scanner.Err(); err != nil {
		s.fail(&StreamError{Err: err}, id)
		return
	}
	s.fail(&StreamError{Err: errors.New("event stream closed by server")}, id)
}

// dispatch handles one named event. Unwrap or normalization failures are
// swallowed: a malformed event must never terminate the session.
func (s *Session) dispatch(event string, data []byte) {
	switch event {
	case "ping":
		s.mu.Lock()
		if s.state == StateConnecting || s.state == StateLive {
			s.state = StateLive
			s.connState = Connected
		}
		s.mu.Unlock()
	case "udp-rx":
		ev, ok := rxlog.Normalize(data)
		if !ok {
			return
		}
		s.sink.Insert(ev)
	}
}

// fail records a transport failure: disconnect, release the handle, and
// settle back to idle so the session can be reopened. If Close already ran
// there is nothing left to tear down.
func (s *Session) fail(serr *StreamError, id string) {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	s.connState = Disconnected
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = StateFailed
	s.mu.Unlock()

	s.logger.Warn("event stream disconnected",
		slog.String("session_id", id),
		slog.String("error", serr.Error()))

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}
