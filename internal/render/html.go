// Package render assembles a NewsletterContent aggregate into a publication
// document, HTML or Markdown.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
)

// HTML renders the newsletter's HTML variant.
type HTML struct {
	Brand    string
	Template string

	now func() time.Time
}

func NewHTML(brand, template string) *HTML {
	if template == "" {
		template = defaultTemplate
	}
	return &HTML{Brand: brand, Template: template, now: time.Now}
}

type sectionBlock struct {
	title string
	body  string
}

// Render walks the fixed section order, inserts the share block after the
// second populated section and the feedback block last, then substitutes the
// document-level tokens.
func (h *HTML) Render(content model.NewsletterContent) (string, error) {
	if !strings.Contains(h.Template, contentToken) {
		return "", fmt.Errorf("render: template missing %s token", contentToken)
	}

	var sections []string
	if len(content.Highlights) > 0 {
		sections = append(sections, formatHighlights(content.Highlights))
	}

	blocks := []sectionBlock{
		{"🌐 Latest Industry News", formatNewsItems(content.BreakingNews)},
		{"📚 Research Spotlight", formatResearch(content.Research)},
		{"🏆 Latest Competitions", formatCompetitions(content.Competitions)},
		{"🚀 New Products", formatProducts(content.Products)},
		{"💻 GitHub Trending", formatRepos(content.Repos)},
		{"📅 Upcoming Events", formatEvents(content.Events)},
	}

	populated := 0
	for _, b := range blocks {
		if b.body == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf(
			`<div class="section">%s<h2 class="section-title">%s</h2>%s%s</div>`,
			"\n", b.title, "\n", b.body))
		populated++
		if populated == 2 {
			sections = append(sections, shareBlock(h.Brand))
		}
	}
	sections = append(sections, feedbackBlock(h.Brand))

	return substitute(h.Template, strings.Join(sections, "\n"), h.Brand, h.now()), nil
}

func formatHighlights(highlights []model.Highlight) string {
	var items []string
	total := 0
	for _, hl := range highlights {
		total += hl.ReadTime
		items = append(items, fmt.Sprintf("<li>%s (%d min read)</li>", hl.Title, hl.ReadTime))
	}
	return `<div class="section summary-section">` +
		`<h2 class="section-title">📋 This Week's Highlights</h2>` +
		fmt.Sprintf(`<div class="read-time"><span>Total reading time: %d minutes</span></div>`, total) +
		"<ul>" + strings.Join(items, "\n") + "</ul></div>"
}

func formatNewsItems(items []model.NewsItem) string {
	var formatted []string
	for _, item := range items {
		engagement := ""
		if item.Engagement != "" {
			engagement = fmt.Sprintf(`<div class="trending-button"><span>%s readers engaged</span></div>`, item.Engagement)
		}
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title"><a href="%s" target="_blank">%s</a></div><p>%s...</p>%s</div>`,
			item.Link, item.Title, truncate(item.Description, 300), engagement))
	}
	return strings.Join(formatted, "\n")
}

func formatResearch(papers []model.ResearchPaper) string {
	var formatted []string
	for _, paper := range papers {
		engagement := ""
		if paper.Engagement != "" {
			engagement = fmt.Sprintf(`<div class="trending-button"><span>%s researchers interested</span></div>`, paper.Engagement)
		}
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title"><a href="%s" target="_blank">%s</a></div><p>Authors: %s</p><p>%s...</p><p>Published in: %s</p>%s</div>`,
			paper.Link, paper.Title, strings.Join(paper.Authors, ", "),
			truncate(paper.Abstract, 250), paper.Publication, engagement))
	}
	return strings.Join(formatted, "\n")
}

func formatCompetitions(comps []model.Competition) string {
	var formatted []string
	for _, comp := range comps {
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title"><a href="%s" target="_blank">%s</a></div><p>Deadline: %s</p><p>Reward: <b>$%s</b></p></div>`,
			comp.Link, comp.Name, comp.Deadline, comp.Reward))
	}
	return strings.Join(formatted, "\n")
}

func formatProducts(products []model.Product) string {
	var formatted []string
	for _, product := range products {
		engagement := ""
		if product.Engagement != "" {
			engagement = fmt.Sprintf(`<div class="trending-button"><span>%s tech enthusiasts watching</span></div>`, product.Engagement)
		}
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title"><a href="%s" target="_blank">%s</a></div><p>%s...</p>%s</div>`,
			product.Link, product.Name, truncate(product.Summary, 200), engagement))
	}
	return strings.Join(formatted, "\n")
}

func formatRepos(repos []model.Repo) string {
	var formatted []string
	for _, repo := range repos {
		engagement := ""
		if repo.Engagement != "" {
			engagement = fmt.Sprintf(`<div class="trending-button"><span>%s stars</span></div>`, repo.Engagement)
		}
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title"><a href="%s" target="_blank">%s</a></div><p>%s...</p>%s</div>`,
			repo.Link, repo.Name, truncate(repo.Summary, 200), engagement))
	}
	return strings.Join(formatted, "\n")
}

func formatEvents(events []model.Event) string {
	var formatted []string
	for _, event := range events {
		formatted = append(formatted, fmt.Sprintf(
			`<div class="news-item"><div class="news-title">%s</div><p>Date: %s</p><p>Location: %s</p><p>%s...</p></div>`,
			event.Title, event.Date, event.Location, truncate(event.Description, 200)))
	}
	return strings.Join(formatted, "\n")
}

func shareBlock(brand string) string {
	return `<div class="section share-section">` +
		fmt.Sprintf(`<h2 class="section-title">❤️ Love %s?</h2>`, brand) +
		`<p>Help fellow AI enthusiasts stay ahead of the curve!</p>` +
		`<a href="#" class="share-button">Share via Email</a>` +
		`<a href="#" class="share-button">Share on X</a>` +
		`<a href="#" class="share-button">Share on LinkedIn</a></div>`
}

func feedbackBlock(brand string) string {
	return `<div class="section feedback-section">` +
		fmt.Sprintf(`<h2 class="section-title">💝 Enjoying %s?</h2>`, brand) +
		`<p>Your feedback shapes our future editions!</p>` +
		`<div class="feedback-buttons">` +
		`<button class="feedback-button positive">Loving It!</button>` +
		`<button class="feedback-button negative">Could Be Better</button>` +
		`</div></div>`
}
