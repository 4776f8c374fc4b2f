package render

import (
	"context"
	"strings"
	"testing"

	"github.com/ailert/ailert/internal/model"
)

func TestMarkdownRenderSections(t *testing.T) {
	m := NewMarkdown("AiLert", StaticImages{})
	m.now = fixedClock

	doc, err := m.Render(context.Background(), model.NewsletterContent{
		Highlights: []model.Highlight{
			{Title: "Big launch", ReadTime: 2},
			{Title: "New paper", ReadTime: 3},
		},
		BreakingNews: []model.NewsItem{
			{Title: "Big launch", Link: "https://example.com/launch", Description: "a launch", ReadTime: 2, Engagement: "512"},
		},
		Repos: []model.Repo{
			{Name: "acme/agent", Link: "https://github.com/acme/agent", Summary: "agents", Engagement: "1,204"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.HasPrefix(doc, "# 🤖 AiLert Newsletter") {
		t.Fatalf("missing top heading: %s", doc[:80])
	}
	if !strings.Contains(doc, "## 📋 Executive Summary") {
		t.Fatalf("executive summary missing")
	}
	if !strings.Contains(doc, "**Total reading time:** 5 minutes") {
		t.Fatalf("total reading time missing")
	}
	if !strings.Contains(doc, "1. **Big launch** (🕰️ 2 min)") {
		t.Fatalf("numbered highlight missing")
	}
	if !strings.Contains(doc, "[Read Full Article](https://example.com/launch)") {
		t.Fatalf("news link missing")
	}
	if !strings.Contains(doc, "⭐ **1,204 stars**") {
		t.Fatalf("repo engagement missing")
	}
	if strings.Contains(doc, "Research Spotlight") {
		t.Fatalf("empty research section rendered")
	}
	if !strings.Contains(doc, "Generated by AiLert | 📅 August 28, 2026") {
		t.Fatalf("footer date missing")
	}
}

func TestMarkdownRenderSectionImages(t *testing.T) {
	m := NewMarkdown("AiLert", StaticImages{})
	m.now = fixedClock

	doc, err := m.Render(context.Background(), model.NewsletterContent{
		Repos: []model.Repo{{Name: "r", Link: "l", Summary: "s"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(doc, "![💻 GitHub Trending](https://via.placeholder.com/800x200") {
		t.Fatalf("section image missing: %s", doc)
	}
}

func TestMarkdownRenderAuthorsInline(t *testing.T) {
	m := NewMarkdown("AiLert", StaticImages{})
	m.now = fixedClock

	doc, err := m.Render(context.Background(), model.NewsletterContent{
		Research: []model.ResearchPaper{{
			Title:       "Scaling Laws Revisited",
			Link:        "https://arxiv.org/abs/0000.0000",
			Authors:     []string{"A. One", "B. Two"},
			Abstract:    "we revisit scaling laws",
			Publication: "arXiv",
		}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(doc, "**Authors:** A. One, B. Two") {
		t.Fatalf("authors not flattened inline: %s", doc)
	}
}

func TestUnescapeEntities(t *testing.T) {
	in := "&quot;Attention&quot; isn&#39;t all you need &amp; more"
	want := `"Attention" isn't all you need & more`
	if got := unescapeEntities(in); got != want {
		t.Fatalf("unescapeEntities = %q, want %q", got, want)
	}
}
