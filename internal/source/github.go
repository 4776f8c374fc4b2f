package source

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/gocolly/colly/v2"
)

const trendingUserAgent = "AilertBot/1.0"

// GitHubTrending scrapes the github.com/trending listing. The page is a
// positional list of article blocks; individual blocks missing a description
// or a star count get defaults instead of failing the page.
type GitHubTrending struct {
	URL string
}

func NewGitHubTrending(url string) *GitHubTrending {
	return &GitHubTrending{URL: url}
}

func (g *GitHubTrending) Name() string { return "github_trending" }

func (g *GitHubTrending) Fetch(ctx context.Context) ([]model.Record, error) {
	u, err := url.Parse(g.URL)
	if err != nil {
		return nil, Unavailable(g.Name(), err)
	}
	c := colly.NewCollector(
		colly.AllowedDomains(u.Host, u.Hostname()),
		colly.UserAgent(trendingUserAgent),
	)
	c.SetRequestTimeout(requestTimeout(ctx, 10*time.Second))

	records := make([]model.Record, 0, 25)

	c.OnHTML("article.Box-row", func(e *colly.HTMLElement) {
		titleSel := e.DOM.Find("h2 a")
		if titleSel.Length() == 0 {
			return
		}
		name := strings.Join(strings.Fields(titleSel.Text()), "")
		href, ok := titleSel.Attr("href")
		if name == "" || !ok {
			return
		}

		desc := strings.TrimSpace(e.ChildText("p"))
		if desc == "" {
			desc = "No description provided."
		}

		stars := strings.ReplaceAll(strings.TrimSpace(e.ChildText(`a[href$="/stargazers"]`)), ",", "")
		if stars == "" {
			stars = "0"
		}

		records = append(records, model.Record{
			Title:      name,
			Link:       "https://github.com" + strings.TrimSpace(href),
			Summary:    desc,
			Source:     "GitHub",
			Engagement: stars,
		})
	})

	if err := ctx.Err(); err != nil {
		return nil, Unavailable(g.Name(), err)
	}
	if err := c.Visit(g.URL); err != nil {
		return nil, Unavailable(g.Name(), err)
	}

	// A fetched page with zero repo rows means the markup moved out from
	// under the selectors, not an empty listing.
	if len(records) == 0 {
		return nil, ParseFailure(g.Name(), errors.New("no repository rows in trending page"))
	}
	return records, nil
}

// requestTimeout derives a per-request timeout from the context deadline,
// falling back to def. Colly manages its own transport, so this is how the
// run budget reaches the scraper.
func requestTimeout(ctx context.Context, def time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < def {
			return d
		}
	}
	return def
}
