package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
)

const hfMaxResponseBytes = 1 << 20

// HuggingFace lists trending models, datasets and spaces from the hub API.
type HuggingFace struct {
	BaseURL string
	Token   string
	TopN    int

	client *http.Client
}

func NewHuggingFace(baseURL, token string, topN int) *HuggingFace {
	if topN <= 0 {
		topN = 5
	}
	return &HuggingFace{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		TopN:    topN,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfEntry struct {
	ID            string  `json:"id"`
	Author        string  `json:"author"`
	TrendingScore float64 `json:"trendingScore"`
}

func (h *HuggingFace) Fetch(ctx context.Context) ([]model.Record, error) {
	endpoints := []struct {
		path  string
		extra url.Values
	}{
		{"/api/models", url.Values{"full": {"true"}, "config": {"false"}}},
		{"/api/datasets", url.Values{"full": {"false"}}},
		{"/api/spaces", url.Values{"full": {"true"}}},
	}

	var (
		records []model.Record
		errs    []error
	)
	for _, ep := range endpoints {
		entries, err := h.fetchListing(ctx, ep.path, ep.extra)
		if err != nil {
			slog.Warn("huggingface: listing failed", "path", ep.path, "err", err)
			errs = append(errs, err)
			continue
		}
		for _, e := range entries {
			if e.ID == "" {
				continue
			}
			records = append(records, model.Record{
				Title:      e.ID,
				Link:       h.BaseURL + "/" + e.ID,
				Summary:    e.Author,
				Source:     "HuggingFace",
				Engagement: strconv.FormatFloat(e.TrendingScore, 'f', -1, 64),
				Score:      e.TrendingScore,
			})
		}
	}

	if len(records) == 0 && len(errs) > 0 {
		return nil, Unavailable(h.Name(), errors.Join(errs...))
	}
	return records, nil
}

func (h *HuggingFace) fetchListing(ctx context.Context, path string, extra url.Values) ([]hfEntry, error) {
	q := url.Values{"limit": {strconv.Itoa(h.TopN)}}
	for k, vs := range extra {
		q[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var entries []hfEntry
	if err := json.NewDecoder(io.LimitReader(resp.Body, hfMaxResponseBytes)).Decode(&entries); err != nil {
		return nil, ParseFailure(h.Name(), err)
	}
	return entries, nil
}
