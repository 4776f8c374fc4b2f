package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const trendingFixture = `<!DOCTYPE html>
<html><body>
<article class="Box-row">
  <h2><a href="/acme/agent"> acme /
      agent </a></h2>
  <p>  An agent framework.  </p>
  <a href="/acme/agent/stargazers">12,345</a>
</article>
<article class="Box-row">
  <h2><a href="/beta/tool">beta / tool</a></h2>
  <a href="/beta/tool/stargazers"></a>
</article>
<article class="Box-row">
  <h2></h2>
</article>
</body></html>`

func TestGitHubTrendingFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trendingFixture))
	}))
	defer srv.Close()

	g := NewGitHubTrending(srv.URL + "/trending/python?since=daily")
	records, err := g.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Title != "acme/agent" {
		t.Fatalf("whitespace not collapsed in name: %q", first.Title)
	}
	if first.Link != "https://github.com/acme/agent" {
		t.Fatalf("link = %q", first.Link)
	}
	if first.Summary != "An agent framework." {
		t.Fatalf("summary = %q", first.Summary)
	}
	if first.Engagement != "12345" {
		t.Fatalf("stars = %q, want comma stripped", first.Engagement)
	}

	second := records[1]
	if second.Summary != "No description provided." {
		t.Fatalf("missing description default not applied: %q", second.Summary)
	}
	if second.Engagement != "0" {
		t.Fatalf("missing stars default not applied: %q", second.Engagement)
	}
}

func TestGitHubTrendingEmptyPageIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>nothing trending here</p></body></html>"))
	}))
	defer srv.Close()

	g := NewGitHubTrending(srv.URL + "/trending")
	_, err := g.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected parse failure for page without repo rows")
	}
	if KindOf(err) != KindParse {
		t.Fatalf("kind = %v, want parse", KindOf(err))
	}
	var srcErr *Error
	if !errors.As(err, &srcErr) || srcErr.Source != "github_trending" {
		t.Fatalf("error does not carry the source name: %v", err)
	}
}

func TestGitHubTrendingUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewGitHubTrending(srv.URL)
	_, err := g.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error for closed server")
	}
	if KindOf(err) != KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", KindOf(err))
	}
}

func TestRequestTimeout(t *testing.T) {
	def := 10 * time.Second
	if got := requestTimeout(context.Background(), def); got != def {
		t.Fatalf("no deadline should give default, got %v", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if got := requestTimeout(ctx, def); got > time.Second || got <= 0 {
		t.Fatalf("near deadline should shrink timeout, got %v", got)
	}
}
