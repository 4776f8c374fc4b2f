package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
)

// Markdown renders the newsletter's Markdown variant: one top-level heading
// per section, inline links, list-type fields flattened to inline text, and
// an illustrative image per section.
type Markdown struct {
	Brand  string
	Images ImageProvider

	now func() time.Time
}

func NewMarkdown(brand string, images ImageProvider) *Markdown {
	if images == nil {
		images = StaticImages{}
	}
	return &Markdown{Brand: brand, Images: images, now: time.Now}
}

func (m *Markdown) Render(ctx context.Context, content model.NewsletterContent) (string, error) {
	var out []string

	out = append(out,
		fmt.Sprintf("# 🤖 %s Newsletter", m.Brand),
		"*Your weekly dose of AI innovation, research, and industry insights*",
		"")

	if len(content.Highlights) > 0 {
		out = append(out, m.highlights(content.Highlights)...)
	}

	sections := []struct {
		title    string
		imageKey string
		body     string
	}{
		{"🌐 Latest Industry News", "ai-news-banner", m.news(content.BreakingNews)},
		{"📚 Research Spotlight", "research-papers", m.research(content.Research)},
		{"🏆 Latest Competitions", "competitions", m.competitions(content.Competitions)},
		{"🚀 New Products", "new-products", m.products(content.Products)},
		{"💻 GitHub Trending", "github-trending", m.repos(content.Repos)},
		{"📅 Upcoming Events", "upcoming-events", m.events(content.Events)},
	}

	for _, s := range sections {
		if s.body == "" {
			continue
		}
		prompt := fmt.Sprintf("modern tech banner for %s about AI technology, clean design, blue gradient", s.imageKey)
		imageURL := m.Images.Generate(ctx, prompt, 800, 200)
		out = append(out,
			fmt.Sprintf("## %s", s.title),
			"",
			fmt.Sprintf("![%s](%s)", s.title, imageURL),
			"",
			s.body,
			"")
	}

	out = append(out, m.footer()...)
	return strings.Join(out, "\n"), nil
}

func (m *Markdown) highlights(highlights []model.Highlight) []string {
	total := 0
	for _, h := range highlights {
		total += h.ReadTime
	}
	out := []string{
		"## 📋 Executive Summary",
		"",
		fmt.Sprintf("> 🕰️ **Total reading time:** %d minutes", total),
		"",
	}
	for i, h := range highlights {
		out = append(out, fmt.Sprintf("%d. **%s** (🕰️ %d min)", i+1, unescapeEntities(h.Title), h.ReadTime))
	}
	return append(out, "", "---", "")
}

func (m *Markdown) news(items []model.NewsItem) string {
	var out []string
	for i, item := range items {
		out = append(out,
			"---",
			fmt.Sprintf("### %d. %s", i+1, unescapeEntities(item.Title)),
			fmt.Sprintf("🔗 **[Read Full Article](%s)**", item.Link),
			"",
			fmt.Sprintf("📖 %s", unescapeEntities(item.Description)),
			"")
		if item.Engagement != "" {
			out = append(out, fmt.Sprintf("📊 *%s readers engaged*", item.Engagement), "")
		}
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) research(papers []model.ResearchPaper) string {
	var out []string
	for i, paper := range papers {
		out = append(out,
			"---",
			fmt.Sprintf("### %d. %s", i+1, unescapeEntities(paper.Title)),
			fmt.Sprintf("🔗 **[Read Paper](%s)**", paper.Link),
			"",
			fmt.Sprintf("👥 **Authors:** %s", strings.Join(paper.Authors, ", ")),
			fmt.Sprintf("📚 **Published in:** %s", paper.Publication),
			"",
			fmt.Sprintf("📄 **Abstract:** %s", unescapeEntities(paper.Abstract)),
			"")
		if paper.Engagement != "" {
			out = append(out, fmt.Sprintf("📊 *%s researchers interested*", paper.Engagement), "")
		}
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) competitions(comps []model.Competition) string {
	var out []string
	for _, comp := range comps {
		out = append(out,
			fmt.Sprintf("### [%s](%s)", comp.Name, comp.Link),
			fmt.Sprintf("**Deadline:** %s", comp.Deadline),
			fmt.Sprintf("**Reward:** $%s", comp.Reward),
			"")
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) products(products []model.Product) string {
	var out []string
	for _, product := range products {
		out = append(out,
			fmt.Sprintf("### [%s](%s)", product.Name, product.Link),
			truncate(product.Summary, 200))
		if product.Engagement != "" {
			out = append(out, fmt.Sprintf("*%s tech enthusiasts watching*", product.Engagement))
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) repos(repos []model.Repo) string {
	var out []string
	for i, repo := range repos {
		out = append(out,
			"---",
			fmt.Sprintf("### %d. %s", i+1, repo.Name),
			fmt.Sprintf("🔗 **[View Repository](%s)**", repo.Link),
			"",
			fmt.Sprintf("📝 %s", unescapeEntities(repo.Summary)),
			"")
		if repo.Engagement != "" {
			out = append(out, fmt.Sprintf("⭐ **%s stars**", repo.Engagement), "")
		}
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) events(events []model.Event) string {
	var out []string
	for _, event := range events {
		out = append(out,
			fmt.Sprintf("### %s", event.Title),
			fmt.Sprintf("**Date:** %s", event.Date),
			fmt.Sprintf("**Location:** %s", event.Location),
			truncate(event.Description, 200),
			"")
	}
	return strings.Join(out, "\n")
}

func (m *Markdown) footer() []string {
	return []string{
		"---",
		"",
		"## 💬 Connect & Share",
		"",
		"👍 **Enjoyed this newsletter?** Help us grow by sharing:",
		"",
		"- 🐦 [Share on Twitter](https://twitter.com/intent/tweet?text=Check%20out%20this%20AI%20newsletter!)",
		"- 💼 [Share on LinkedIn](https://www.linkedin.com/sharing/share-offsite/)",
		"- 📧 Forward to a colleague",
		"",
		"---",
		"",
		fmt.Sprintf("*🤖 Generated by %s | 📅 %s*", m.Brand, m.now().Format("January 02, 2006")),
	}
}
