// Package api is the HTTP trigger surface: newsletter generation on demand,
// scheduler control and subscription management. Requests are validated
// against the fixed section and task-type sets before any fetch begins.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/ailert/ailert/internal/scheduler"
	"github.com/ailert/ailert/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// Generator produces the ranked content aggregate for one run.
type Generator interface {
	Generate(ctx context.Context, sections []model.Section, task model.TaskType) (model.NewsletterContent, error)
}

// HTMLRenderer and MarkdownRenderer assemble the aggregate into a document.
type HTMLRenderer interface {
	Render(content model.NewsletterContent) (string, error)
}

type MarkdownRenderer interface {
	Render(ctx context.Context, content model.NewsletterContent) (string, error)
}

// Store is the persistence slice the API needs; nil disables caching and
// issue history (the CLI path).
type Store interface {
	SaveIssue(issue *storage.Issue) error
	LatestIssue(taskType string) (*storage.Issue, error)
	AddSubscriber(email string) (*storage.Subscriber, error)
	RemoveSubscriber(email string) error
	CachedNewsletter(ctx context.Context, key string) (string, bool)
	CacheNewsletter(ctx context.Context, key, content string)
}

// Control is the scheduler state machine surface.
type Control interface {
	Start(task model.TaskType) error
	Pause() error
	Resume() error
	Stop() error
	Status() (scheduler.State, model.TaskType)
}

type Options struct {
	BasicAuthUser string
	BasicAuthPass string
	RateRPS       float64
	RateBurst     int
	Brand         string
}

type Server struct {
	gen   Generator
	html  HTMLRenderer
	md    MarkdownRenderer
	store Store
	sched Control
	opts  Options
}

func NewServer(gen Generator, html HTMLRenderer, md MarkdownRenderer, store Store, sched Control, opts Options) *Server {
	return &Server{gen: gen, html: html, md: md, store: store, sched: sched, opts: opts}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	if s.opts.BasicAuthUser != "" && s.opts.BasicAuthPass != "" {
		r.Use(basicAuth(s.opts.BasicAuthUser, s.opts.BasicAuthPass))
	}

	v1 := r.Group("/internal/v1")
	if s.opts.RateRPS > 0 {
		v1.Use(rateLimit(s.opts.RateRPS, s.opts.RateBurst))
	}
	{
		v1.POST("/newsletters", s.generateNewsletter)
		v1.GET("/newsletters/latest", s.latestNewsletter)
		v1.POST("/scheduler/:task/start", s.startScheduler)
		v1.POST("/scheduler/manage/:action", s.manageScheduler)
		v1.GET("/scheduler/status", s.schedulerStatus)
		v1.POST("/subscribers", s.subscribe)
		v1.DELETE("/subscribers/:email", s.unsubscribe)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type generateRequest struct {
	Sections []string `json:"sections"`
	TaskType string   `json:"task_type"`
	Format   string   `json:"format"`
}

func (s *Server) generateNewsletter(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Sections) == 0 || req.TaskType == "" {
		errorResponse(c, http.StatusBadRequest, "missing required fields: sections or task_type")
		return
	}

	task, ok := model.ParseTaskType(req.TaskType)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid task_type, must be 'daily' or 'weekly'")
		return
	}

	sections := make([]model.Section, 0, len(req.Sections))
	for _, raw := range req.Sections {
		section, ok := model.ParseSection(raw)
		if !ok {
			errorResponse(c, http.StatusBadRequest, "unknown section: "+raw)
			return
		}
		sections = append(sections, section)
	}

	format := req.Format
	if format == "" {
		format = "html"
	}
	if format != "html" && format != "markdown" && format != "both" {
		errorResponse(c, http.StatusBadRequest, "invalid format, must be 'html', 'markdown' or 'both'")
		return
	}

	ctx := c.Request.Context()
	cacheKey := storage.CacheKey(sections, task, format)
	if s.store != nil && format == "html" {
		if cached, ok := s.store.CachedNewsletter(ctx, cacheKey); ok {
			c.JSON(http.StatusOK, gin.H{
				"status":    "success",
				"message":   "newsletter generated successfully",
				"content":   cached,
				"cached":    true,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	// Connector failures never surface here; the generator degrades the
	// affected sections and keeps going.
	content, err := s.gen.Generate(ctx, sections, task)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp := gin.H{
		"status":    "success",
		"message":   "newsletter generated successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	var html string
	if format == "html" || format == "both" {
		html, err = s.html.Render(content)
		if err != nil {
			// A broken render must not ship a partial document.
			errorResponse(c, http.StatusInternalServerError, "render failed: "+err.Error())
			return
		}
		resp["content"] = html
	}
	if format == "markdown" || format == "both" {
		md, err := s.md.Render(ctx, content)
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "render failed: "+err.Error())
			return
		}
		resp["markdown"] = md
	}

	id := issueID(sections, task, time.Now().UTC())
	resp["id"] = id

	if s.store != nil && html != "" {
		issue := &storage.Issue{
			ID:       id,
			TaskType: string(task),
			Format:   format,
			Brand:    s.opts.Brand,
			Content:  html,
			Extras:   datatypes.JSONMap{"sections": sectionNames(sections)},
		}
		if err := s.store.SaveIssue(issue); err != nil {
			slog.Error("api: issue save failed", "id", id, "err", err)
		}
		if format == "html" {
			s.store.CacheNewsletter(ctx, cacheKey, html)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) latestNewsletter(c *gin.Context) {
	if s.store == nil {
		errorResponse(c, http.StatusServiceUnavailable, "issue archive unavailable")
		return
	}

	taskType := c.Query("task_type")
	if taskType != "" {
		if _, ok := model.ParseTaskType(taskType); !ok {
			errorResponse(c, http.StatusBadRequest, "invalid task_type, must be 'daily' or 'weekly'")
			return
		}
	}

	issue, err := s.store.LatestIssue(taskType)
	if err != nil {
		errorResponse(c, http.StatusNotFound, "no newsletter issue found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"id":        issue.ID,
		"task_type": issue.TaskType,
		"content":   issue.Content,
		"createdAt": issue.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) startScheduler(c *gin.Context) {
	task, ok := model.ParseTaskType(c.Param("task"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid task type, use 'daily' or 'weekly'")
		return
	}

	if err := s.sched.Start(task); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			status = http.StatusConflict
		}
		errorResponse(c, status, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": string(task) + " scheduler started successfully",
		"state":   scheduler.Running.String(),
	})
}

func (s *Server) manageScheduler(c *gin.Context) {
	var (
		err error
		msg string
	)
	switch action := c.Param("action"); action {
	case "pause":
		err = s.sched.Pause()
		msg = "scheduler paused successfully"
	case "resume":
		err = s.sched.Resume()
		msg = "scheduler resumed successfully"
	case "stop":
		err = s.sched.Stop()
		msg = "scheduler stopped successfully"
	default:
		errorResponse(c, http.StatusBadRequest, "invalid action, use 'pause', 'resume' or 'stop'")
		return
	}

	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	state, task := s.sched.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   msg,
		"state":     state.String(),
		"task_type": string(task),
	})
}

func (s *Server) schedulerStatus(c *gin.Context) {
	state, task := s.sched.Status()
	c.JSON(http.StatusOK, gin.H{
		"is_running": state != scheduler.Stopped,
		"state":      state.String(),
		"task_type":  string(task),
	})
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type subscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || !emailRe.MatchString(req.Email) {
		errorResponse(c, http.StatusBadRequest, "invalid email address")
		return
	}
	if s.store == nil {
		errorResponse(c, http.StatusServiceUnavailable, "subscriptions unavailable")
		return
	}

	sub, err := s.store.AddSubscriber(req.Email)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "subscription failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "id": sub.ID})
}

func (s *Server) unsubscribe(c *gin.Context) {
	email := c.Param("email")
	if !emailRe.MatchString(email) {
		errorResponse(c, http.StatusBadRequest, "invalid email address")
		return
	}
	if s.store == nil {
		errorResponse(c, http.StatusServiceUnavailable, "subscriptions unavailable")
		return
	}

	if err := s.store.RemoveSubscriber(email); err != nil {
		errorResponse(c, http.StatusInternalServerError, "unsubscribe failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":    "error",
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// issueID derives the stored issue's identifier from the run parameters and
// day, so regenerating the same edition lands on the same row.
func issueID(sections []model.Section, task model.TaskType, now time.Time) string {
	return storage.ContentID(map[string]string{
		"sections":  strings.Join(sectionNames(sections), ","),
		"task_type": string(task),
		"date":      now.Format("2006-01-02"),
	}, []string{"sections", "task_type", "date"}, "nl_")
}

func sectionNames(sections []model.Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return names
}
