package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ailert/ailert/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
}

func TestHTMLRenderSingleSection(t *testing.T) {
	h := NewHTML("AiLert", "")
	h.now = fixedClock

	doc, err := h.Render(model.NewsletterContent{
		Repos: []model.Repo{
			{Name: "acme/agent", Link: "https://github.com/acme/agent", Summary: "agent framework", Engagement: "1,204"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(doc, "GitHub Trending") {
		t.Fatalf("repos section missing from document")
	}
	for _, absent := range []string{"Industry News", "Research Spotlight", "Latest Competitions", "New Products", "Upcoming Events"} {
		if strings.Contains(doc, absent) {
			t.Fatalf("empty section %q rendered anyway", absent)
		}
	}
	if !strings.Contains(doc, "acme/agent") || !strings.Contains(doc, "1,204 stars") {
		t.Fatalf("repo item not rendered: %s", doc)
	}
}

func TestHTMLRenderFeedbackAlwaysLast(t *testing.T) {
	h := NewHTML("AiLert", "")
	h.now = fixedClock

	doc, err := h.Render(model.NewsletterContent{
		BreakingNews: []model.NewsItem{{Title: "n", Link: "l", Description: "d"}},
		Repos:        []model.Repo{{Name: "r", Link: "l2", Summary: "s"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	feedback := strings.Index(doc, "feedback-section")
	if feedback == -1 {
		t.Fatalf("feedback block missing")
	}
	for _, section := range []string{"Industry News", "GitHub Trending", "share-section"} {
		if idx := strings.Index(doc, section); idx == -1 || idx > feedback {
			t.Fatalf("section %q should precede the feedback block", section)
		}
	}
}

func TestHTMLRenderSharePlacement(t *testing.T) {
	h := NewHTML("AiLert", "")
	h.now = fixedClock

	// Three populated sections: share goes after the second.
	doc, err := h.Render(model.NewsletterContent{
		BreakingNews: []model.NewsItem{{Title: "n", Link: "l", Description: "d"}},
		Research:     []model.ResearchPaper{{Title: "p", Link: "l", Abstract: "a"}},
		Repos:        []model.Repo{{Name: "r", Link: "l", Summary: "s"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	share := strings.Index(doc, "share-section")
	research := strings.Index(doc, "Research Spotlight")
	repos := strings.Index(doc, "GitHub Trending")
	if share == -1 || research == -1 || repos == -1 {
		t.Fatalf("expected share, research and repos blocks in document")
	}
	if share < research || share > repos {
		t.Fatalf("share block must sit between the second and third sections")
	}

	// With a single populated section the share block never fires.
	doc, err = h.Render(model.NewsletterContent{
		Repos: []model.Repo{{Name: "r", Link: "l", Summary: "s"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(doc, "share-section") {
		t.Fatalf("share block rendered with only one populated section")
	}
}

func TestHTMLRenderNoUnresolvedTokens(t *testing.T) {
	h := NewHTML("AiLert", "")
	h.now = fixedClock

	doc, err := h.Render(model.NewsletterContent{
		Highlights:   []model.Highlight{{Title: "h", ReadTime: 2}},
		BreakingNews: []model.NewsItem{{Title: "n", Link: "l", Description: "d", ReadTime: 2}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(doc, "{{") || strings.Contains(doc, "}}") {
		t.Fatalf("unresolved template tokens remain: %s", doc)
	}
	if !strings.Contains(doc, "AiLert") {
		t.Fatalf("brand name missing")
	}
	if !strings.Contains(doc, "2026") {
		t.Fatalf("current year missing from footer")
	}
}

func TestHTMLRenderMissingContentToken(t *testing.T) {
	h := &HTML{Brand: "AiLert", Template: "<html><body>no token</body></html>", now: fixedClock}
	if _, err := h.Render(model.NewsletterContent{}); err == nil {
		t.Fatalf("expected error for template without content token")
	}
}

func TestHTMLRenderHighlightsTotalReadTime(t *testing.T) {
	h := NewHTML("AiLert", "")
	h.now = fixedClock

	doc, err := h.Render(model.NewsletterContent{
		Highlights: []model.Highlight{
			{Title: "first", ReadTime: 2},
			{Title: "second", ReadTime: 3},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(doc, "Total reading time: 5 minutes") {
		t.Fatalf("highlight total read time missing: %s", doc)
	}
}

func TestSubstituteStripsStalePlaceholders(t *testing.T) {
	tpl := "<p>{{content}}</p>{{#each items}}<li>{{name}}</li>{{/each}}{{mystery}}"
	out := substitute(tpl, "body", "AiLert", fixedClock())
	if strings.Contains(out, "{{") {
		t.Fatalf("placeholders survived substitution: %s", out)
	}
	if !strings.Contains(out, "body") {
		t.Fatalf("content body missing: %s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate(short) = %q", got)
	}
	if got := truncate("überlänge", 4); got != "über" {
		t.Fatalf("truncate must cut on runes, got %q", got)
	}
}
