package transmission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStartSendsExactBody(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"started":true,"startedAt":"2025-06-01T10:00:00Z"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.Start(context.Background(), &StartRequest{
		DstIP:   "172.30.1.123",
		DstPort: 20000,
		SrcPort: 40000,
		SiteID:  "1387787777",
	})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !resp.Started {
		t.Errorf("Started = false, want true")
	}

	if calls != 1 {
		t.Fatalf("expected exactly one POST, got %d", calls)
	}
	if gotPath != "/api/transmission/start" {
		t.Errorf("path = %q, want /api/transmission/start", gotPath)
	}
	want := map[string]any{
		"dstIp":   "172.30.1.123",
		"dstPort": float64(20000),
		"srcPort": float64(40000),
		"siteId":  "1387787777",
	}
	for k, v := range want {
		if gotBody[k] != v {
			t.Errorf("body[%q] = %v, want %v", k, gotBody[k], v)
		}
	}
	if len(gotBody) != len(want) {
		t.Errorf("body has %d fields, want %d: %v", len(gotBody), len(want), gotBody)
	}
}

func TestStartSurfacesServerMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		io.WriteString(w, `{"message":"transmission already running"}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Start(context.Background(), &StartRequest{})
	if err == nil {
		t.Fatal("Start() succeeded, want error")
	}

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("error type = %T, want *RemoteError", err)
	}
	if remoteErr.Message != "transmission already running" {
		t.Errorf("Message = %q, want verbatim server message", remoteErr.Message)
	}
	if remoteErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", remoteErr.StatusCode)
	}
}

func TestStartIgnoresUnparseableSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.Start(context.Background(), &StartRequest{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !resp.Started {
		t.Errorf("Started = false, want true for a 2xx with an ignorable body")
	}
}

func TestStopHitsStopEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/transmission/stop" {
		t.Errorf("request = %s %s, want POST /api/transmission/stop", gotMethod, gotPath)
	}
}

func TestStatusDecodesNullableFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"running":false,"dstIp":null,"dstPort":null,"srcPort":null,"siteId":null}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.Running {
		t.Errorf("Running = true, want false")
	}
	if st.DstIP != nil || st.DstPort != nil || st.SrcPort != nil || st.SiteID != nil {
		t.Errorf("nullable fields should stay nil when the backend sends null")
	}
}

func TestStatusRemoteErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Status(context.Background())

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("error type = %T, want *RemoteError", err)
	}
	if remoteErr.Message != "" {
		t.Errorf("Message = %q, want empty", remoteErr.Message)
	}
	if remoteErr.Error() == "" {
		t.Error("Error() should still describe the failure")
	}
}
