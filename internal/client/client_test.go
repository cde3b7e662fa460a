package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"darkroom/internal/api"
	"darkroom/internal/client"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusDecodesSnapshot(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/status" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.StatusResponse{Total: 42, Pending: 40, RunStatus: "running"})
	})

	c := client.New(srv.URL, "")
	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Total != 42 || status.Pending != 40 || status.RunStatus != "running" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStartSendsOverridesAndToken(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hunter2" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req api.StartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.BatchSize != 10 || req.Concurrency != 2 {
			t.Fatalf("unexpected overrides %+v", req)
		}
		json.NewEncoder(w).Encode(api.RunResponse{RunStatus: "running"})
	})

	c := client.New(srv.URL, "hunter2")
	run, err := c.Start(context.Background(), api.StartRequest{BatchSize: 10, Concurrency: 2})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if run.RunStatus != "running" {
		t.Fatalf("unexpected run status %q", run.RunStatus)
	}
}

func TestErrorResponseIsSurfaced(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "cannot pause while idle"})
	})

	c := client.New(srv.URL, "")
	_, err := c.Pause(context.Background())
	if err == nil {
		t.Fatal("expected error from conflict response")
	}
	if !strings.Contains(err.Error(), "cannot pause while idle") {
		t.Fatalf("daemon message not surfaced: %v", err)
	}
	if !strings.Contains(err.Error(), "409") {
		t.Fatalf("status code not surfaced: %v", err)
	}
}

func TestBareHostPortGetsScheme(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.HealthResponse{Healthy: true})
	})

	hostPort := strings.TrimPrefix(srv.URL, "http://")
	c := client.New(hostPort, "")
	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if !health.Healthy {
		t.Fatal("expected healthy response")
	}
}

func TestEmptyAddressIsRejected(t *testing.T) {
	c := client.New("", "")
	if _, err := c.Status(context.Background()); err == nil {
		t.Fatal("expected error for unset daemon address")
	}
}
