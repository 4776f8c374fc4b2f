package model

import (
	"strings"
	"time"
)

// TaskType selects the newsletter cadence. It changes which trending
// window the repo connector scrapes and which cron spec a scheduled run uses.
type TaskType string

const (
	TaskDaily  TaskType = "daily"
	TaskWeekly TaskType = "weekly"
)

// ParseTaskType validates a task type coming from the API or CLI.
func ParseTaskType(s string) (TaskType, bool) {
	switch TaskType(s) {
	case TaskDaily, TaskWeekly:
		return TaskType(s), true
	default:
		return "", false
	}
}

// Section is one kind of newsletter content.
type Section string

const (
	SectionNews         Section = "news"
	SectionResearch     Section = "research"
	SectionCompetitions Section = "competitions"
	SectionProducts     Section = "products"
	SectionRepos        Section = "repos"
	SectionEvents       Section = "events"

	// SectionAll expands to every known section.
	SectionAll Section = "all"
)

// Sections returns every concrete section in the order the newsletter
// emits them. The order is fixed; renderers and the generator both rely on it.
func Sections() []Section {
	return []Section{
		SectionNews,
		SectionResearch,
		SectionCompetitions,
		SectionProducts,
		SectionRepos,
		SectionEvents,
	}
}

// ParseSection validates a section name coming from the API or CLI.
func ParseSection(s string) (Section, bool) {
	switch Section(s) {
	case SectionAll, SectionNews, SectionResearch, SectionCompetitions,
		SectionProducts, SectionRepos, SectionEvents:
		return Section(s), true
	default:
		return "", false
	}
}

// Record is the common intermediate shape every connector produces before
// categorization. Only a subset of fields is populated per source; Engagement
// is an opaque source-native signal and is never compared across sources.
type Record struct {
	Title       string
	Link        string
	Summary     string
	Source      string
	Engagement  string
	PublishedAt time.Time

	// Research-only fields.
	Authors []string
	Venue   string

	// Scheduling fields: Deadline doubles as the event date string.
	Deadline string
	Reward   string
	Location string

	// Native popularity signals used by the reranker.
	Score     float64
	Citations float64
}

// FullText is the text the scoring engine vectorizes.
func (r Record) FullText() string {
	parts := []string{r.Title, r.Summary}
	if len(r.Authors) > 0 {
		parts = append(parts, strings.Join(r.Authors, " "))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	ReadTime    int    `json:"readTime"`
	Source      string `json:"source"`
	Engagement  string `json:"engagement,omitempty"`
}

type ResearchPaper struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Abstract    string   `json:"abstract"`
	Publication string   `json:"publication"`
	Link        string   `json:"link"`
	Date        string   `json:"date"`
	Engagement  string   `json:"engagement,omitempty"`
}

type Repo struct {
	Name       string `json:"name"`
	Link       string `json:"link"`
	Summary    string `json:"summary"`
	Source     string `json:"source"`
	Engagement string `json:"engagement,omitempty"`
}

type Product struct {
	Name       string `json:"name"`
	Link       string `json:"link"`
	Summary    string `json:"summary"`
	Source     string `json:"source"`
	Engagement string `json:"engagement,omitempty"`
}

type Competition struct {
	Name     string `json:"name"`
	Link     string `json:"link"`
	Deadline string `json:"deadline"`
	Reward   string `json:"reward"`
}

type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Highlight is one executive-summary line.
type Highlight struct {
	Title    string `json:"title"`
	ReadTime int    `json:"readTime"`
}

// NewsletterContent is the aggregate handed to the renderer. A nil slice means
// the section was not requested or its sources failed; a non-nil slice is
// always ranked, deduplicated and capped.
type NewsletterContent struct {
	Highlights   []Highlight     `json:"highlights,omitempty"`
	BreakingNews []NewsItem      `json:"breakingNews,omitempty"`
	Research     []ResearchPaper `json:"research,omitempty"`
	Competitions []Competition   `json:"competitions,omitempty"`
	Products     []Product       `json:"products,omitempty"`
	Repos        []Repo          `json:"repos,omitempty"`
	Events       []Event         `json:"events,omitempty"`
}

// Empty reports whether no section got populated.
func (c NewsletterContent) Empty() bool {
	return len(c.Highlights) == 0 && len(c.BreakingNews) == 0 &&
		len(c.Research) == 0 && len(c.Competitions) == 0 &&
		len(c.Products) == 0 && len(c.Repos) == 0 && len(c.Events) == 0
}

const wordsPerMinute = 200

// ReadTime estimates reading minutes from word count, truncated like the
// newsletter footer expects (a 400 word text reads in 2 minutes).
func ReadTime(text string) int {
	words := len(strings.Fields(text))
	return words / wordsPerMinute
}
