package source

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ailert/ailert/internal/model"
	"github.com/mmcdole/gofeed"
)

// maxFeedWorkers caps how many feeds are fetched at once so a long feed list
// does not open a connection per URL.
const maxFeedWorkers = 10

// RSS reads a set of syndication feeds and normalizes their entries into news
// records. Feeds are fetched concurrently; a single broken feed only costs its
// own entries.
type RSS struct {
	FeedURLs []string

	parser *gofeed.Parser
}

func NewRSS(feedURLs []string) *RSS {
	return &RSS{FeedURLs: feedURLs, parser: gofeed.NewParser()}
}

func (r *RSS) Name() string { return "rss_news" }

func (r *RSS) Fetch(ctx context.Context) ([]model.Record, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []model.Record
		errs    []error
	)
	sem := make(chan struct{}, maxFeedWorkers)

	for _, url := range r.FeedURLs {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			items, err := r.fetchFeed(ctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("rss: feed failed", "url", url, "err", err)
				errs = append(errs, err)
				return
			}
			records = append(records, items...)
		}(url)
	}
	wg.Wait()

	// Partial feed loss is fine; only a complete blackout makes the fetch
	// itself unreliable.
	if len(records) == 0 && len(errs) > 0 {
		return nil, Unavailable(r.Name(), errors.Join(errs...))
	}
	return records, nil
}

func (r *RSS) fetchFeed(ctx context.Context, url string) ([]model.Record, error) {
	feed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	sourceName := strings.TrimSpace(feed.Title)
	if sourceName == "" {
		sourceName = "Unknown Source"
	}

	records := make([]model.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		records = append(records, model.Record{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			Summary:     StripHTML(desc),
			Source:      sourceName,
			PublishedAt: entryTime(item),
		})
	}
	return records, nil
}

// entryTime returns the entry's publication time, preferring the published
// field over updated. An unparseable date degrades to the zero time so the
// item sorts last instead of sinking the whole fetch.
func entryTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

// StripHTML drops markup, decodes entities and collapses whitespace. Feed
// descriptions mix plain text and HTML fragments; a real parser keeps literal
// angle brackets in prose ("n < 100") intact instead of eating them as tag
// openers. An unparseable input degrades to whitespace-collapsed raw text,
// never to an error.
func StripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
