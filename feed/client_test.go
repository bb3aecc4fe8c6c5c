package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClient_FetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(sampleGeoJSON))
	}))
	defer srv.Close()

	c, err := NewClient(srv.Client(), FormatGeoJSON, srv.URL, "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Records) != 2 || snap.Skipped != 2 {
		t.Errorf("unexpected snapshot: %d records, %d skipped", len(snap.Records), snap.Skipped)
	}
}

func TestClient_FetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.Client(), FormatGeoJSON, srv.URL, "")
	_, err := c.Fetch(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTTP 502") {
		t.Fatalf("expected HTTP 502 error, got %v", err)
	}
}

func TestClient_FetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trens.geojson")
	if err := os.WriteFile(path, []byte(sampleGeoJSON), 0644); err != nil {
		t.Fatal(err)
	}
	c, _ := NewClient(nil, FormatGeoJSON, path, "")
	snap, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(snap.Records))
	}
}

func TestNewClient_UnsupportedFormat(t *testing.T) {
	if _, err := NewClient(nil, Format("csv"), "x", ""); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
