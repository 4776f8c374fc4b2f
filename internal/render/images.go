package render

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ImageProvider supplies illustrative section images for the Markdown
// variant. Implementations must always return a usable URL.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, width, height int) string
}

// PollinationsImages builds prompt-addressed image URLs against the
// pollinations.ai generator, with a static placeholder fallback when the
// generated URL does not respond.
type PollinationsImages struct {
	BaseURL string
	client  *http.Client
}

func NewPollinationsImages() *PollinationsImages {
	return &PollinationsImages{
		BaseURL: "https://image.pollinations.ai/prompt",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *PollinationsImages) Generate(ctx context.Context, prompt string, width, height int) string {
	imageURL := fmt.Sprintf("%s/%s?width=%d&height=%d&seed=42",
		p.BaseURL, url.PathEscape(prompt), width, height)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return placeholderImage(prompt, width, height)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return placeholderImage(prompt, width, height)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return placeholderImage(prompt, width, height)
	}
	return imageURL
}

func placeholderImage(prompt string, width, height int) string {
	text := truncate(prompt, 50)
	return fmt.Sprintf("https://via.placeholder.com/%dx%d/4A90E2/FFFFFF?text=%s",
		width, height, url.QueryEscape(text))
}

// StaticImages is an ImageProvider that performs no network calls; used by
// tests and the CLI.
type StaticImages struct{}

func (StaticImages) Generate(_ context.Context, prompt string, width, height int) string {
	return placeholderImage(prompt, width, height)
}
