package storage

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Issue is one rendered newsletter edition.
type Issue struct {
	ID       string `gorm:"primaryKey;size:40" json:"id"`
	TaskType string `gorm:"size:16;index" json:"taskType"`
	Format   string `gorm:"size:16" json:"format"`
	Brand    string `gorm:"size:64" json:"brand"`
	Content  string `gorm:"type:text" json:"content"`
	// Extras keeps run metadata (requested sections, populated sections).
	Extras datatypes.JSONMap `gorm:"type:jsonb" json:"extras"`

	CreatedAt time.Time `json:"createdAt"`
}

type Subscriber struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	Email  string `gorm:"size:256;uniqueIndex" json:"email"`
	Active bool   `gorm:"index" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists issues and subscribers in Postgres and keeps a short-lived
// rendered-output cache in Redis.
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client

	cacheTTL time.Duration
}

func NewStore(dsn, redisAddr string, cacheTTL time.Duration) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Issue{}, &Subscriber{}); err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("storage: redis ping failed, cache disabled", "err", err)
		rdb = nil
	}

	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Store{DB: db, Redis: rdb, cacheTTL: cacheTTL}, nil
}

// SaveIssue upserts an edition. Issue IDs are derived from the request
// parameters and the date, so regenerating the same edition within a day
// rewrites the existing row instead of failing on the primary key.
func (s *Store) SaveIssue(issue *Issue) error {
	return s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(issue).Error
}

func (s *Store) LatestIssue(taskType string) (*Issue, error) {
	var issue Issue
	q := s.DB.Model(&Issue{})
	if taskType != "" {
		q = q.Where("task_type = ?", taskType)
	}
	if err := q.Order("created_at DESC").First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// AddSubscriber registers an address, reactivating it when it already exists.
func (s *Store) AddSubscriber(email string) (*Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing Subscriber
	if err := s.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		if !existing.Active {
			existing.Active = true
			if err := s.DB.Save(&existing).Error; err != nil {
				return nil, err
			}
		}
		return &existing, nil
	}

	sub := &Subscriber{
		ID:     uuid.NewString(),
		Email:  email,
		Active: true,
	}
	if err := s.DB.Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// RemoveSubscriber deactivates instead of deleting so a resubscribe keeps the
// original record.
func (s *Store) RemoveSubscriber(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.DB.Model(&Subscriber{}).
		Where("email = ?", email).
		Update("active", false).Error
}

func (s *Store) ActiveSubscribers() ([]Subscriber, error) {
	var subs []Subscriber
	if err := s.DB.Where("active = ?", true).Order("created_at ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// CachedNewsletter checks the result cache for a previously rendered output.
func (s *Store) CachedNewsletter(ctx context.Context, key string) (string, bool) {
	if s.Redis == nil {
		return "", false
	}
	val, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *Store) CacheNewsletter(ctx context.Context, key, content string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, key, content, s.cacheTTL).Err(); err != nil {
		slog.Warn("storage: cache write failed", "key", key, "err", err)
	}
}

// CacheKey derives the result-cache key from the request parameters.
func CacheKey(sections []model.Section, task model.TaskType, format string) string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	sort.Strings(names)
	return "newsletter:" + strings.Join(names, ",") + ":" + string(task) + ":" + format
}
