package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ailert/ailert/internal/api"
	"github.com/ailert/ailert/internal/config"
	"github.com/ailert/ailert/internal/mailer"
	"github.com/ailert/ailert/internal/model"
	"github.com/ailert/ailert/internal/newsletter"
	"github.com/ailert/ailert/internal/render"
	"github.com/ailert/ailert/internal/scheduler"
	"github.com/ailert/ailert/internal/source"
	"github.com/ailert/ailert/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	gen := newsletter.NewGenerator(buildSources(cfg), cfg.FetchTimeout)

	tpl, err := render.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		log.Fatalf("load template failed: %v", err)
	}
	htmlRenderer := render.NewHTML(cfg.BrandName, tpl)
	mdRenderer := render.NewMarkdown(cfg.BrandName, render.NewPollinationsImages())

	mail := mailer.New(cfg.SendgridAPIKey, cfg.EmailSender)

	// Scheduled runs generate every section, archive the issue and deliver
	// it to active subscribers. Delivery problems are logged, never fatal.
	run := func(ctx context.Context, task model.TaskType) error {
		content, err := gen.Generate(ctx, []model.Section{model.SectionAll}, task)
		if err != nil {
			return err
		}
		html, err := htmlRenderer.Render(content)
		if err != nil {
			return err
		}

		id := storage.ContentID(map[string]string{
			"task_type": string(task),
			"date":      time.Now().UTC().Format("2006-01-02"),
		}, []string{"task_type", "date"}, "nl_")
		issue := &storage.Issue{
			ID:       id,
			TaskType: string(task),
			Format:   "html",
			Brand:    cfg.BrandName,
			Content:  html,
			Extras:   datatypes.JSONMap{"trigger": "scheduler"},
		}
		if err := store.SaveIssue(issue); err != nil {
			slog.Error("save scheduled issue", "id", id, "err", err)
		}

		subs, err := store.ActiveSubscribers()
		if err != nil {
			slog.Error("list subscribers", "err", err)
			return nil
		}
		recipients := make([]string, len(subs))
		for i, sub := range subs {
			recipients[i] = sub.Email
		}
		subject := cfg.BrandName + " " + string(task) + " digest"
		report, err := mail.Send(ctx, recipients, subject, html)
		if err != nil {
			slog.Error("send digest", "err", err)
			return nil
		}
		slog.Info("digest delivered", "task", string(task), "sent", report.Sent, "failed", len(report.Failed), "status", report.Status)
		return nil
	}

	sched := scheduler.New(cfg.DailyCronSpec, cfg.WeeklyCronSpec, run)

	r := gin.Default()
	server := api.NewServer(gen, htmlRenderer, mdRenderer, store, sched, api.Options{
		BasicAuthUser: cfg.BasicAuthUser,
		BasicAuthPass: cfg.BasicAuthPass,
		RateRPS:       cfg.RateLimitRPS,
		RateBurst:     cfg.RateLimitBurst,
		Brand:         cfg.BrandName,
	})
	server.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

// buildSources wires every configured connector. Optional integrations
// (Hugging Face, Product Hunt) join the run only when their credentials
// are present.
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
