package mediastore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "test-key", 2*time.Second, nil)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestIssueUploadURL(t *testing.T) {
	expires := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/uploads" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Path != "videos/abc.mp4" || req.ContentType != "video/mp4" {
			t.Errorf("unexpected payload: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(uploadResponse{
			UploadURL: "https://blobs.example.com/signed/abc",
			PublicURL: "https://cdn.example.com/videos/abc.mp4",
			ExpiresAt: &expires,
		})
	}))

	ticket, err := client.IssueUploadURL(context.Background(), "videos/abc.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("IssueUploadURL: %v", err)
	}
	if ticket.UploadURL != "https://blobs.example.com/signed/abc" {
		t.Fatalf("upload url = %s", ticket.UploadURL)
	}
	if !ticket.ExpiresAt.Equal(expires) {
		t.Fatalf("expires = %v, want %v", ticket.ExpiresAt, expires)
	}
}

func TestIssueUploadURL_UpstreamError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	if _, err := client.IssueUploadURL(context.Background(), "videos/abc.mp4", "video/mp4"); err == nil {
		t.Fatalf("expected error on upstream 502")
	}
}

func TestDelete(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/v1/objects" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		switch r.URL.Query().Get("path") {
		case "videos/known.mp4":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	if err := client.Delete(context.Background(), "videos/known.mp4"); err != nil {
		t.Fatalf("Delete known: %v", err)
	}
	if err := client.Delete(context.Background(), "videos/unknown.mp4"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete unknown = %v, want ErrNotFound", err)
	}
}

func TestConvertToTicket_DefaultExpiry(t *testing.T) {
	before := time.Now().UTC()
	ticket := convertToTicket(uploadResponse{UploadURL: "u", PublicURL: "p"})
	if ticket.ExpiresAt.Before(before) {
		t.Fatalf("default expiry %v not in the future", ticket.ExpiresAt)
	}
}
