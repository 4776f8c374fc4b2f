// Package newsletter turns a requested set of sections into one ranked,
// deduplicated content aggregate by fanning out to the source connectors.
package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/ailert/ailert/internal/rank"
	"github.com/ailert/ailert/internal/source"
)

// Policy selects how a section's raw records get ordered.
type Policy int

const (
	// PolicySourceOrder trusts the source's own listing order (prize-sorted
	// CLI output, trending page position).
	PolicySourceOrder Policy = iota
	// PolicyImportance applies batch-relative heuristic importance scoring.
	PolicyImportance
	// PolicyRerank applies classifier-based reranking; used when one section
	// merges sources with incompatible native ranking criteria.
	PolicyRerank
)

const (
	topNFull      = 5
	topNFocused   = 10
	highlightsAll = 3
)

// Sources names the connector behind each section. A nil source leaves its
// section permanently absent (disabled). Repos is split by cadence because
// the trending window scraped differs between daily and weekly editions.
type Sources struct {
	News         source.Source
	Research     source.Source
	Competitions source.Source
	ReposDaily   source.Source
	ReposWeekly  source.Source
	Events       source.Source
	Products     []source.Source
}

// Generator is the aggregation orchestrator.
type Generator struct {
	sources Sources
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time
}

func NewGenerator(s Sources, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		sources: s,
		timeout: timeout,
		log:     slog.Default(),
		now:     time.Now,
	}
}

type sectionPolicy struct {
	section model.Section
	policy  Policy
	sources []source.Source
}

// plan is the fixed section -> {connectors, policy} table, in emission order.
func (g *Generator) plan(task model.TaskType) []sectionPolicy {
	repos := g.sources.ReposDaily
	if task == model.TaskWeekly && g.sources.ReposWeekly != nil {
		repos = g.sources.ReposWeekly
	}
	return []sectionPolicy{
		{model.SectionNews, PolicyImportance, sourcesOf(g.sources.News)},
		{model.SectionResearch, PolicyRerank, sourcesOf(g.sources.Research)},
		{model.SectionCompetitions, PolicySourceOrder, sourcesOf(g.sources.Competitions)},
		{model.SectionProducts, PolicyRerank, g.sources.Products},
		{model.SectionRepos, PolicySourceOrder, sourcesOf(repos)},
		{model.SectionEvents, PolicySourceOrder, sourcesOf(g.sources.Events)},
	}
}

func sourcesOf(s source.Source) []source.Source {
	if s == nil {
		return nil
	}
	return []source.Source{s}
}

// Generate fans out one task per connector behind the requested sections,
// waits for every task to resolve, and merges the survivors. A failed task
// only costs its own section; even a run where every connector fails returns
// an empty aggregate, not an error.
func (g *Generator) Generate(ctx context.Context, sections []model.Section, taskType model.TaskType) (model.NewsletterContent, error) {
	requested, err := expandSections(sections)
	if err != nil {
		return model.NewsletterContent{}, err
	}
	focused := len(requested) == 1

	type task struct {
		section model.Section
		src     source.Source
	}
	var tasks []task
	plan := g.plan(taskType)
	for _, sp := range plan {
		if _, ok := requested[sp.section]; !ok {
			continue
		}
		for _, src := range sp.sources {
			tasks = append(tasks, task{section: sp.section, src: src})
		}
	}

	type result struct {
		section model.Section
		records []model.Record
		err     error
	}
	results := make([]result, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			taskCtx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()
			records, err := t.src.Fetch(taskCtx)
			results[i] = result{section: t.section, records: records, err: err}
		}(i, t)
	}
	wg.Wait()

	// Merge after the join, in declared task order, so the aggregate never
	// depends on which connector finished first.
	bySection := make(map[model.Section][]model.Record)
	for i, r := range results {
		if r.err != nil {
			g.log.Error("section source failed",
				"section", string(r.section),
				"source", tasks[i].src.Name(),
				"kind", source.KindOf(r.err).String(),
				"err", r.err)
			continue
		}
		bySection[r.section] = append(bySection[r.section], dedupeByLink(r.records)...)
	}

	var content model.NewsletterContent
	for _, sp := range plan {
		records, ok := bySection[sp.section]
		if !ok || len(records) == 0 {
			continue
		}
		g.populate(&content, sp, records, focused)
	}
	return content, nil
}

func (g *Generator) populate(content *model.NewsletterContent, sp sectionPolicy, records []model.Record, focused bool) {
	topN := topNFull
	if focused {
		topN = topNFocused
	}

	switch sp.section {
	case model.SectionNews:
		highlightsN := highlightsAll
		if focused {
			highlightsN = topNFocused
		}
		content.Highlights, content.BreakingNews = g.newsSection(records, highlightsN)
	case model.SectionResearch:
		content.Research = researchPapers(rankRecords(records, sp.policy), topN)
	case model.SectionCompetitions:
		content.Competitions = competitions(records, topN)
	case model.SectionProducts:
		content.Products = products(rankRecords(records, sp.policy), topN)
	case model.SectionRepos:
		content.Repos = repos(records, topN)
	case model.SectionEvents:
		content.Events = events(records, topN)
	}
}

// newsSection keeps only items published today, ranks them by batch
// importance, and emits the same top-N set twice: once as executive-summary
// highlights and once as the detailed breaking-news list. The overlap is the
// point: a summary view and a detail view of the same today set.
func (g *Generator) newsSection(records []model.Record, topN int) ([]model.Highlight, []model.NewsItem) {
	today := g.now().UTC()
	var todays []model.Record
	for _, r := range records {
		y1, m1, d1 := r.PublishedAt.UTC().Date()
		y2, m2, d2 := today.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			todays = append(todays, r)
		}
	}
	if len(todays) == 0 {
		return nil, nil
	}

	ranked := rankRecords(todays, PolicyImportance)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	highlights := make([]model.Highlight, 0, len(ranked))
	items := make([]model.NewsItem, 0, len(ranked))
	for _, r := range ranked {
		readTime := model.ReadTime(r.Summary)
		highlights = append(highlights, model.Highlight{Title: r.Title, ReadTime: readTime})
		items = append(items, model.NewsItem{
			Title:       r.Title,
			Description: r.Summary,
			Link:        r.Link,
			ReadTime:    readTime,
			Source:      r.Source,
			Engagement:  r.Engagement,
		})
	}
	return highlights, items
}

func rankRecords(records []model.Record, policy Policy) []model.Record {
	var order []int
	switch policy {
	case PolicyImportance:
		docs := make([]rank.Doc, len(records))
		for i, r := range records {
			docs[i] = rank.Doc{Text: r.FullText(), Published: r.PublishedAt}
		}
		order = rank.RankByImportance(docs)
	case PolicyRerank:
		cands := make([]rank.Candidate, len(records))
		for i, r := range records {
			cands[i] = rank.Candidate{
				Text:      r.FullText(),
				Published: r.PublishedAt,
				Score:     r.Score,
				Citations: r.Citations,
			}
		}
		order = rank.Rerank(cands)
	default:
		return records
	}

	out := make([]model.Record, len(records))
	for pos, idx := range order {
		out[pos] = records[idx]
	}
	return out
}

func dedupeByLink(records []model.Record) []model.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		key := r.Link
		if key == "" {
			key = r.Title
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func expandSections(sections []model.Section) (map[model.Section]struct{}, error) {
	requested := make(map[model.Section]struct{})
	for _, s := range sections {
		if s == model.SectionAll {
			for _, known := range model.Sections() {
				requested[known] = struct{}{}
			}
			continue
		}
		if _, ok := model.ParseSection(string(s)); !ok {
			return nil, fmt.Errorf("unknown section %q", s)
		}
		requested[s] = struct{}{}
	}
	if len(requested) == 0 {
		return nil, fmt.Errorf("no sections requested")
	}
	return requested, nil
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func researchPapers(records []model.Record, topN int) []model.ResearchPaper {
	out := make([]model.ResearchPaper, 0, topN)
	for _, r := range capped(records, topN) {
		date := ""
		if !r.PublishedAt.IsZero() {
			date = r.PublishedAt.Format("Jan 02 2006")
		}
		out = append(out, model.ResearchPaper{
			Title:       r.Title,
			Authors:     r.Authors,
			Abstract:    r.Summary,
			Publication: r.Venue,
			Link:        r.Link,
			Date:        date,
			Engagement:  r.Engagement,
		})
	}
	return out
}

func competitions(records []model.Record, topN int) []model.Competition {
	out := make([]model.Competition, 0, topN)
	for _, r := range capped(records, topN) {
		out = append(out, model.Competition{
			Name:     r.Title,
			Link:     r.Link,
			Deadline: r.Deadline,
			Reward:   r.Reward,
		})
	}
	return out
}

func products(records []model.Record, topN int) []model.Product {
	out := make([]model.Product, 0, topN)
	for _, r := range capped(records, topN) {
		out = append(out, model.Product{
			Name:       r.Title,
			Link:       r.Link,
			Summary:    r.Summary,
			Source:     r.Source,
			Engagement: r.Engagement,
		})
	}
	return out
}

func repos(records []model.Record, topN int) []model.Repo {
	out := make([]model.Repo, 0, topN)
	for _, r := range capped(records, topN) {
		out = append(out, model.Repo{
			Name:       r.Title,
			Link:       r.Link,
			Summary:    r.Summary,
			Source:     r.Source,
			Engagement: r.Engagement,
		})
	}
	return out
}

func events(records []model.Record, topN int) []model.Event {
	out := make([]model.Event, 0, topN)
	for _, r := range capped(records, topN) {
		out = append(out, model.Event{
			Title:       r.Title,
			Date:        r.Deadline,
			Location:    r.Location,
			Description: r.Summary,
		})
	}
	return out
}
