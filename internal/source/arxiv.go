package source

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/mmcdole/gofeed"
)

const (
	arxivPageSize         = 100
	arxivMaxResponseBytes = 8 << 20
)

// Arxiv pages through the arXiv query API. Each page is an Atom document;
// requests are spaced with a polite delay plus random jitter so repeated
// paging does not trip the API's rate limiting.
type Arxiv struct {
	BaseURL  string
	Query    string
	MaxFetch int

	// Delay and Jitter control inter-page pacing. Tests zero them out.
	Delay  time.Duration
	Jitter time.Duration

	client *http.Client
	parser *gofeed.Parser
}

func NewArxiv(baseURL, query string, maxFetch int) *Arxiv {
	if maxFetch <= 0 {
		maxFetch = arxivPageSize
	}
	return &Arxiv{
		BaseURL:  baseURL,
		Query:    query,
		MaxFetch: maxFetch,
		Delay:    time.Second,
		Jitter:   3 * time.Second,
		client:   &http.Client{Timeout: 20 * time.Second},
		parser:   gofeed.NewParser(),
	}
}

func (a *Arxiv) Name() string { return "arxiv" }

func (a *Arxiv) Fetch(ctx context.Context) ([]model.Record, error) {
	var records []model.Record

	for start := 0; len(records) < a.MaxFetch; start += arxivPageSize {
		if start > 0 {
			if err := a.pause(ctx); err != nil {
				return nil, Unavailable(a.Name(), err)
			}
		}

		batch, err := a.fetchPage(ctx, start)
		if err != nil {
			// Keep what earlier pages already produced.
			if len(records) > 0 {
				break
			}
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
	}

	if len(records) > a.MaxFetch {
		records = records[:a.MaxFetch]
	}
	return records, nil
}

func (a *Arxiv) fetchPage(ctx context.Context, start int) ([]model.Record, error) {
	url := fmt.Sprintf("%ssearch_query=%s&sortBy=lastUpdatedDate&start=%d&max_results=%d",
		a.BaseURL, a.Query, start, arxivPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Unavailable(a.Name(), err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, Unavailable(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, Unavailable(a.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, arxivMaxResponseBytes))
	if err != nil {
		return nil, Unavailable(a.Name(), err)
	}

	feed, err := a.parser.ParseString(string(body))
	if err != nil {
		return nil, ParseFailure(a.Name(), err)
	}

	records := make([]model.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		authors := make([]string, 0, len(item.Authors))
		for _, p := range item.Authors {
			if p != nil && p.Name != "" {
				authors = append(authors, p.Name)
			}
		}
		if len(authors) == 0 {
			continue
		}

		published := entryTime(item)
		records = append(records, model.Record{
			Title:       strings.Join(strings.Fields(item.Title), " "),
			Link:        item.Link,
			Summary:     StripHTML(item.Description),
			Source:      "arXiv",
			Venue:       "ARXIV",
			Authors:     authors,
			PublishedAt: published,
			// Recency stands in as the source-native score: arXiv has no
			// engagement counter, its own listing order is update time.
			Score: float64(published.Unix()),
		})
	}
	return records, nil
}

func (a *Arxiv) pause(ctx context.Context) error {
	d := a.Delay
	if a.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(a.Jitter)))
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
