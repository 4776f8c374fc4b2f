package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is loaded once at process start and treated as immutable afterwards.
type Config struct {
	AppPort string `env:"APP_PORT, default=9000"`

	PostgresDSN string `env:"POSTGRES_DSN, default=host=localhost user=ailert password=ailert dbname=ailert port=5432 sslmode=disable TimeZone=UTC"`
	RedisAddr   string `env:"REDIS_ADDR, default=localhost:6379"`

	BrandName    string        `env:"BRAND_NAME, default=AiLert"`
	TemplatePath string        `env:"TEMPLATE_PATH"`
	CacheTTL     time.Duration `env:"CACHE_TTL, default=1h"`

	// Per-connector call budget inside one aggregation run. A connector that
	// exceeds it is treated the same as an unavailable source.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT, default=30s"`

	RSSFeeds []string `env:"RSS_FEEDS, delimiter=|, default=https://techcrunch.com/category/artificial-intelligence/feed/|https://www.wired.com/feed/tag/ai/latest/rss|https://venturebeat.com/category/ai/feed/"`

	GitHubTrendingDailyURL  string `env:"GITHUB_TRENDING_DAILY_URL, default=https://github.com/trending/python?since=daily&spoken_language_code=en"`
	GitHubTrendingWeeklyURL string `env:"GITHUB_TRENDING_WEEKLY_URL, default=https://github.com/trending/python?since=weekly&spoken_language_code=en"`

	ArxivBaseURL  string `env:"ARXIV_BASE_URL, default=http://export.arxiv.org/api/query?"`
	ArxivQuery    string `env:"ARXIV_QUERY, default=cat:cs.CV+OR+cat:cs.LG+OR+cat:cs.CL+OR+cat:cs.AI+OR+cat:cs.NE+OR+cat:cs.RO"`
	ArxivMaxFetch int    `env:"ARXIV_MAX_FETCH, default=100"`

	HFBaseURL string `env:"HF_BASE_URL, default=https://huggingface.co"`
	HFToken   string `env:"HF_TOKEN"`

	// Product Hunt stays disabled unless a token is configured.
	PHGraphURL string `env:"PH_GRAPH_URL, default=https://api.producthunt.com/v2/api/graphql"`
	PHToken    string `env:"PH_TOKEN"`

	KaggleBin       string `env:"KAGGLE_BIN, default=kaggle"`
	KaggleConfigDir string `env:"KAGGLE_CONFIG_DIR"`

	EventsFeedURL string   `env:"EVENTS_FEED_URL, default=https://www.unite.ai/events/feed/"`
	EventsPages   []string `env:"EVENTS_PAGES, delimiter=|, default=https://conferencealerts.co.uk/topic-listing?topic=Artificial%20Intelligence|https://aideadlin.es/?sub=ML,CV,NLP"`

	SendgridAPIKey string `env:"SENDGRID_API_KEY"`
	EmailSender    string `env:"EMAIL_SENDER, default=weekly@ailert.tech"`

	DailyCronSpec  string `env:"DAILY_CRON_SPEC, default=0 8 * * *"`
	WeeklyCronSpec string `env:"WEEKLY_CRON_SPEC, default=0 8 * * 1"`

	BasicAuthUser string `env:"APP_BASIC_USER"`
	BasicAuthPass string `env:"APP_BASIC_PASS"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS, default=2"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST, default=5"`
}

// Load reads the configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GitHubTrendingURL picks the trending window matching the task cadence.
func (c *Config) GitHubTrendingURL(task string) string {
	if task == "weekly" {
		return c.GitHubTrendingWeeklyURL
	}
	return c.GitHubTrendingDailyURL
}
