package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ailert/ailert/internal/config"
	"github.com/ailert/ailert/internal/model"
	"github.com/ailert/ailert/internal/newsletter"
	"github.com/ailert/ailert/internal/render"
	"github.com/ailert/ailert/internal/source"
)

// One-shot command line entry: aggregate, rank and print a single edition
// without the server, database or scheduler. Useful for manual runs and
// for previewing template changes.
func main() {
	sectionsFlag := flag.String("sections", "all", "comma separated sections (news,research,competitions,products,repos,events,all)")
	taskFlag := flag.String("task", "daily", "task type: daily or weekly")
	formatFlag := flag.String("format", "html", "output format: html or markdown")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	task, ok := model.ParseTaskType(*taskFlag)
	if !ok {
		log.Fatalf("invalid task type %q", *taskFlag)
	}

	var sections []model.Section
	for _, raw := range strings.Split(*sectionsFlag, ",") {
		section, ok := model.ParseSection(strings.TrimSpace(raw))
		if !ok {
			log.Fatalf("unknown section %q", raw)
		}
		sections = append(sections, section)
	}

	gen := newsletter.NewGenerator(buildSources(cfg), cfg.FetchTimeout)

	ctx := context.Background()
	content, err := gen.Generate(ctx, sections, task)
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}

	switch *formatFlag {
	case "html":
		tpl, err := render.LoadTemplate(cfg.TemplatePath)
		if err != nil {
			log.Fatalf("load template failed: %v", err)
		}
		doc, err := render.NewHTML(cfg.BrandName, tpl).Render(content)
		if err != nil {
			log.Fatalf("render failed: %v", err)
		}
		fmt.Println(doc)
	case "markdown":
		// Static images keep the preview offline.
		doc, err := render.NewMarkdown(cfg.BrandName, render.StaticImages{}).Render(ctx, content)
		if err != nil {
			log.Fatalf("render failed: %v", err)
		}
		fmt.Println(doc)
	default:
		log.Fatalf("invalid format %q, use 'html' or 'markdown'", *formatFlag)
	}
}

func buildSources(cfg *config.Config) newsletter.Sources {
	products := []source.Source{
		source.NewHuggingFace(cfg.HFBaseURL, cfg.HFToken, 10),
	}
	if cfg.PHToken != "" {
		products = append(products, source.NewProductHunt(cfg.PHGraphURL, cfg.PHToken))
	}

	return newsletter.Sources{
		News:         source.NewRSS(cfg.RSSFeeds),
		Research:     source.NewArxiv(cfg.ArxivBaseURL, cfg.ArxivQuery, cfg.ArxivMaxFetch),
		Competitions: source.NewKaggle(cfg.KaggleBin, cfg.KaggleConfigDir),
		ReposDaily:   source.NewGitHubTrending(cfg.GitHubTrendingDailyURL),
		ReposWeekly:  source.NewGitHubTrending(cfg.GitHubTrendingWeeklyURL),
		Events:       source.NewEvents(cfg.EventsFeedURL, cfg.EventsPages),
		Products:     products,
	}
}
