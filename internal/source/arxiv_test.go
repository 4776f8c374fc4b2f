package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func atomPage(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>ArXiv Query Results</title>
` + strings.Join(entries, "\n") + `
</feed>`
}

func atomEntry(id, title string, withAuthor bool) string {
	author := ""
	if withAuthor {
		author = "<author><name>Jane Researcher</name></author>"
	}
	return fmt.Sprintf(`<entry>
<id>http://arxiv.org/abs/%s</id>
<title>%s</title>
<link href="http://arxiv.org/abs/%s"/>
<summary>An abstract about models.</summary>
<published>2026-08-27T10:00:00Z</published>
<updated>2026-08-27T10:00:00Z</updated>
%s
</entry>`, id, title, id, author)
}

func newArxivTest(url string, maxFetch int) *Arxiv {
	a := NewArxiv(url+"?", "cat:cs.LG", maxFetch)
	a.Delay = 0
	a.Jitter = 0
	return a
}

func TestArxivFetchPagination(t *testing.T) {
	var starts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		starts = append(starts, start)
		if start == "0" {
			entries := make([]string, arxivPageSize)
			for i := range entries {
				entries[i] = atomEntry(fmt.Sprintf("2608.%05d", i), fmt.Sprintf("Paper %d", i), true)
			}
			fmt.Fprint(w, atomPage(entries...))
			return
		}
		fmt.Fprint(w, atomPage(atomEntry("2608.99901", "Second Page Paper", true)))
	}))
	defer srv.Close()

	a := newArxivTest(srv.URL, 101)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(starts) != 2 || starts[0] != "0" || starts[1] != "100" {
		t.Fatalf("pagination offsets = %v, want [0 100]", starts)
	}
	if len(records) != 101 {
		t.Fatalf("expected fetch capped at 101 records, got %d", len(records))
	}

	first := records[0]
	if first.Venue != "ARXIV" || first.Source != "arXiv" {
		t.Fatalf("venue/source = %q/%q", first.Venue, first.Source)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Jane Researcher" {
		t.Fatalf("authors = %v", first.Authors)
	}
	if first.Score <= 0 {
		t.Fatalf("recency score not set: %f", first.Score)
	}
}

func TestArxivFetchStopsAtMaxFetch(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		entries := make([]string, arxivPageSize)
		for i := range entries {
			entries[i] = atomEntry(fmt.Sprintf("2608.%05d", i), "Paper", true)
		}
		fmt.Fprint(w, atomPage(entries...))
	}))
	defer srv.Close()

	a := newArxivTest(srv.URL, 100)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if requests != 1 {
		t.Fatalf("a full first page should satisfy MaxFetch=100, made %d requests", requests)
	}
	if len(records) != 100 {
		t.Fatalf("expected 100 records, got %d", len(records))
	}
}

func TestArxivFetchSkipsAuthorlessEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, atomPage(
			atomEntry("2608.00001", "With Author", true),
			atomEntry("2608.00002", "Orphan Entry", false),
		))
	}))
	defer srv.Close()

	a := newArxivTest(srv.URL, 10)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 || records[0].Title != "With Author" {
		t.Fatalf("authorless entry not skipped: %+v", records)
	}
}

func TestArxivFetchKeepsEarlierPagesOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "0" {
			entries := make([]string, arxivPageSize)
			for i := range entries {
				entries[i] = atomEntry(fmt.Sprintf("2608.%05d", i), "Paper", true)
			}
			fmt.Fprint(w, atomPage(entries...))
			return
		}
		http.Error(w, "throttled", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := newArxivTest(srv.URL, 200)
	records, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("a later page failure must keep earlier pages: %v", err)
	}
	if len(records) != arxivPageSize {
		t.Fatalf("expected %d records from the surviving page, got %d", arxivPageSize, len(records))
	}
}

func TestArxivFetchFirstPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := newArxivTest(srv.URL, 10)
	_, err := a.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error when the first page fails")
	}
	if KindOf(err) != KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", KindOf(err))
	}
}
