package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHuggingFaceFetch(t *testing.T) {
	var sawAuth, sawLimit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok" {
			sawAuth = true
		}
		if r.URL.Query().Get("limit") == "5" {
			sawLimit = true
		}
		switch r.URL.Path {
		case "/api/models":
			fmt.Fprint(w, `[{"id":"org/model-a","author":"org","trendingScore":42},{"id":"","author":"ghost"}]`)
		case "/api/datasets":
			fmt.Fprint(w, `[{"id":"org/data-b","author":"org","trendingScore":7}]`)
		case "/api/spaces":
			http.Error(w, "flaky", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	h := NewHuggingFace(srv.URL, "tok", 5)
	records, err := h.Fetch(context.Background())
	if err != nil {
		t.Fatalf("one failed listing must not sink the fetch: %v", err)
	}
	if !sawAuth {
		t.Fatalf("bearer token not sent")
	}
	if !sawLimit {
		t.Fatalf("limit parameter not sent")
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records (empty id skipped), got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Title != "org/model-a" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.Link != srv.URL+"/org/model-a" {
		t.Fatalf("link = %q", first.Link)
	}
	if first.Score != 42 || first.Engagement != "42" {
		t.Fatalf("score/engagement = %f/%q", first.Score, first.Engagement)
	}
}

func TestHuggingFaceFetchAllListingsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	h := NewHuggingFace(srv.URL, "", 5)
	_, err := h.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error when every listing fails")
	}
	if KindOf(err) != KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", KindOf(err))
	}
}
