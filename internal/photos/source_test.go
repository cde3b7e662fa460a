package photos_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"darkroom/internal/config"
	"darkroom/internal/photos"
)

func TestFetchResolvesRelativeRefsAndSendsToken(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("asset-bytes"))
	}))
	defer srv.Close()

	source := photos.NewHTTPSource(config.Source{BaseURL: srv.URL, Token: "src-token", RequestTimeout: 5})
	data, err := source.Fetch(context.Background(), "photos/17.jpg")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(data, []byte("asset-bytes")) {
		t.Fatalf("unexpected payload %q", data)
	}
	if gotPath != "/photos/17.jpg" {
		t.Fatalf("relative ref resolved to %q", gotPath)
	}
	if gotAuth != "Bearer src-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
}

func TestFetchUsesAbsoluteRefsAsIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// No base URL configured; the absolute ref carries the full location.
	source := photos.NewHTTPSource(config.Source{RequestTimeout: 5})
	if _, err := source.Fetch(context.Background(), srv.URL+"/legacy/1.jpg"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
}

func TestFetchRejectsBadResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.jpg":
			http.NotFound(w, r)
		case "/empty.jpg":
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	source := photos.NewHTTPSource(config.Source{BaseURL: srv.URL, RequestTimeout: 5})

	if _, err := source.Fetch(context.Background(), "missing.jpg"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if _, err := source.Fetch(context.Background(), "empty.jpg"); err == nil {
		t.Fatal("expected error for empty response body")
	}
}

func TestFetchRequiresBaseURLForRelativeRefs(t *testing.T) {
	source := photos.NewHTTPSource(config.Source{RequestTimeout: 5})
	if _, err := source.Fetch(context.Background(), "photos/1.jpg"); err == nil {
		t.Fatal("expected error for relative ref without base URL")
	}
	if _, err := source.Fetch(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty ref")
	}
}
