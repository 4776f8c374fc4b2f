package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ailert/ailert/internal/model"
)

const phQuery = `query ($dateFrom: DateTime!, $dateTo: DateTime!) {
  posts(first: 10, postedAfter: $dateFrom, postedBefore: $dateTo, order: VOTES_COUNT) {
    edges { node { id name tagline url votesCount } }
  }
}`

// ProductHunt pulls last month's top posts through the GraphQL API. The
// connector is only wired in when an API token is configured.
type ProductHunt struct {
	GraphURL string
	Token    string

	client *http.Client
	now    func() time.Time
}

func NewProductHunt(graphURL, token string) *ProductHunt {
	return &ProductHunt{
		GraphURL: graphURL,
		Token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

func (p *ProductHunt) Name() string { return "producthunt" }

func (p *ProductHunt) Fetch(ctx context.Context) ([]model.Record, error) {
	from, to := lastMonthRange(p.now().UTC())

	payload, err := json.Marshal(map[string]any{
		"query": phQuery,
		"variables": map[string]string{
			"dateFrom": from.Format(time.RFC3339),
			"dateTo":   to.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.GraphURL, bytes.NewReader(payload))
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+p.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, Unavailable(p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, Unavailable(p.Name(), fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var decoded struct {
		Data struct {
			Posts struct {
				Edges []struct {
					Node struct {
						Name       string `json:"name"`
						Tagline    string `json:"tagline"`
						URL        string `json:"url"`
						VotesCount int    `json:"votesCount"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"posts"`
		} `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, hfMaxResponseBytes)).Decode(&decoded); err != nil {
		return nil, ParseFailure(p.Name(), err)
	}

	records := make([]model.Record, 0, len(decoded.Data.Posts.Edges))
	for _, edge := range decoded.Data.Posts.Edges {
		n := edge.Node
		records = append(records, model.Record{
			Title:      n.Name,
			Link:       n.URL,
			Summary:    n.Tagline,
			Source:     "Product Hunt",
			Engagement: strconv.Itoa(n.VotesCount),
			Score:      float64(n.VotesCount),
		})
	}
	return records, nil
}

// lastMonthRange returns the first and last day of the previous calendar month.
func lastMonthRange(now time.Time) (time.Time, time.Time) {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfPrevMonth := firstOfThisMonth.AddDate(0, 0, -1)
	firstOfPrevMonth := time.Date(lastOfPrevMonth.Year(), lastOfPrevMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfPrevMonth, lastOfPrevMonth
}
