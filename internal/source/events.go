package source

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
)

// Events merges an events RSS feed with conference-listing pages. Both halves
// are best effort; only losing every sub-source makes the fetch unreliable.
type Events struct {
	FeedURL  string
	PageURLs []string

	parser *gofeed.Parser
}

func NewEvents(feedURL string, pageURLs []string) *Events {
	return &Events{FeedURL: feedURL, PageURLs: pageURLs, parser: gofeed.NewParser()}
}

func (e *Events) Name() string { return "events" }

func (e *Events) Fetch(ctx context.Context) ([]model.Record, error) {
	var (
		records []model.Record
		errs    []error
	)

	pageRecords, err := e.fetchPages(ctx)
	if err != nil {
		slog.Warn("events: page scrape failed", "err", err)
		errs = append(errs, err)
	}
	records = append(records, pageRecords...)

	feedRecords, err := e.fetchFeed(ctx)
	if err != nil {
		slog.Warn("events: feed failed", "url", e.FeedURL, "err", err)
		errs = append(errs, err)
	}
	records = append(records, feedRecords...)

	if len(records) == 0 && len(errs) > 0 {
		return nil, Unavailable(e.Name(), errors.Join(errs...))
	}

	// The same conference often shows up in both halves.
	return dedupeByTitle(records), nil
}

func (e *Events) fetchFeed(ctx context.Context) ([]model.Record, error) {
	if e.FeedURL == "" {
		return nil, nil
	}
	feed, err := e.parser.ParseURLWithContext(e.FeedURL, ctx)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		records = append(records, model.Record{
			Title:       strings.TrimSpace(item.Title),
			Summary:     StripHTML(item.Description),
			Source:      "events_feed",
			PublishedAt: entryTime(item),
			Deadline:    item.Published,
		})
	}
	return records, nil
}

func (e *Events) fetchPages(ctx context.Context) ([]model.Record, error) {
	var (
		records []model.Record
		errs    []error
	)
	for _, pageURL := range e.PageURLs {
		items, err := e.scrapePage(ctx, pageURL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, items...)
	}
	if len(records) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

func (e *Events) scrapePage(ctx context.Context, pageURL string) ([]model.Record, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.AllowedDomains(u.Host, u.Hostname()),
		colly.UserAgent(trendingUserAgent),
	)
	c.SetRequestTimeout(requestTimeout(ctx, 10*time.Second))

	var records []model.Record

	// Listing sites shuffle their class names; pick the first selector set
	// that matches and fill defaults per missing sub-element.
	c.OnHTML("div.conference-item, div.conf-item, div.deadline-item", func(el *colly.HTMLElement) {
		title := firstText(el.DOM, "h2, h3, h4", ".conf-title")
		if title == "" {
			return
		}
		records = append(records, model.Record{
			Title:    title,
			Summary:  firstText(el.DOM, ".description", ".conf-description", ".abstract"),
			Source:   "events_page",
			Deadline: firstText(el.DOM, ".date", ".conf-date", ".deadline"),
			Location: firstText(el.DOM, ".location", ".conf-location", ".venue"),
		})
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	return records, nil
}

func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if t := strings.TrimSpace(sel.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func dedupeByTitle(records []model.Record) []model.Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.Title))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
