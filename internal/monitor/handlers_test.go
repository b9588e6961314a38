package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lab-ups/upsmon/internal/api/transmission"
	"github.com/lab-ups/upsmon/internal/controller"
	"github.com/lab-ups/upsmon/internal/rxlog"
	"github.com/lab-ups/upsmon/internal/stream"
)

// newTestServer wires a full monitor router against an in-memory backend
// double and an unopened stream session.
func newTestServer(t *testing.T) (*Server, *rxlog.Log) {
	t.Helper()

	var running bool
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/transmission/start":
			running = true
			w.Write([]byte(`{"started":true}`))
		case r.URL.Path == "/api/transmission/stop":
			running = false
		case r.URL.Path == "/api/transmission/status":
			json.NewEncoder(w).Encode(map[string]any{"running": running})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(backend.Close)

	events := rxlog.NewLog(10)
	api := transmission.NewClient(transmission.WithBaseURL(backend.URL))
	ctrl := controller.New(api, events, controller.WithPollInterval(time.Hour))
	t.Cleanup(ctrl.Shutdown)
	session := stream.New(api.StreamURL(), events)

	return New(0, ctrl, events, session, nil), events
}

func seedEvents(events *rxlog.Log) {
	cats := []rxlog.Category{rxlog.CategoryA, rxlog.CategoryA, rxlog.CategoryB, rxlog.CategoryUnknown}
	for i, cat := range cats {
		events.Insert(rxlog.ReceivedEvent{
			ReceivedAt: time.Date(2025, 6, 1, 0, 0, i, 0, time.UTC),
			SourceIP:   "10.0.0.1",
			SourcePort: 40000,
			Category:   cat,
		})
	}
}

func TestStatusViewIncludesStreamIndicator(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/monitor/status", nil)
	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var view map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if view["running"] != false {
		t.Errorf("running = %v, want false", view["running"])
	}
	if view["stream"] != string(stream.Disconnected) {
		t.Errorf("stream = %v, want DISCONNECTED", view["stream"])
	}
}

func TestEventListFiltering(t *testing.T) {
	srv, events := newTestServer(t)
	seedEvents(events)

	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/monitor/events?category=A", nil))

	var got []rxlog.ReceivedEvent
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("filtered events = %d, want 2", len(got))
	}
	for _, ev := range got {
		if ev.Category != rxlog.CategoryA {
			t.Errorf("event category = %q, want A", ev.Category)
		}
	}

	// No category parameter means no filtering.
	rr = httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/monitor/events", nil))
	got = nil
	json.Unmarshal(rr.Body.Bytes(), &got)
	if len(got) != 4 {
		t.Errorf("unfiltered events = %d, want 4", len(got))
	}
}

func TestCountsCoverFullLog(t *testing.T) {
	srv, events := newTestServer(t)
	seedEvents(events)

	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/monitor/counts", nil))

	var counts rxlog.Counts
	if err := json.Unmarshal(rr.Body.Bytes(), &counts); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if counts.Total != 4 || counts.A != 2 || counts.B != 1 || counts.Unknown != 1 {
		t.Errorf("counts = %+v, want total 4, A 2, B 1, unknown 1", counts)
	}
}

func TestStartValidationError(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"dstIp":"bogus","dstPort":20000,"srcPort":40000,"siteId":"x"}`
	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/monitor/start", strings.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if !strings.Contains(resp["message"], "dstIp") {
		t.Errorf("message = %q, want mention of dstIp", resp["message"])
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"dstIp":"172.30.1.123","dstPort":20000,"srcPort":40000,"siteId":"1387787777"}`
	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/monitor/start", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", rr.Code, rr.Body.String())
	}
	var st transmission.RunStatus
	json.Unmarshal(rr.Body.Bytes(), &st)
	if !st.Running {
		t.Error("Running = false after start")
	}

	rr = httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/monitor/stop", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("stop status = %d: %s", rr.Code, rr.Body.String())
	}
	st = transmission.RunStatus{Running: true}
	json.Unmarshal(rr.Body.Bytes(), &st)
	if st.Running {
		t.Error("Running = true after stop")
	}
}

func TestClearEmptiesLogRegardlessOfRunState(t *testing.T) {
	srv, events := newTestServer(t)
	seedEvents(events)

	// Start a job first: clearing must work while running too.
	body := `{"dstIp":"172.30.1.123","dstPort":20000,"srcPort":40000,"siteId":"1387787777"}`
	rr := httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/monitor/start", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("start status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/monitor/clear", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", rr.Code)
	}
	if got := events.Len(); got != 0 {
		t.Errorf("log length = %d, want 0", got)
	}
}
