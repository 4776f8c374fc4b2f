// Package scheduler owns the cron-driven newsletter runs and the run state
// machine. All mutable run state lives behind the Scheduler's lock; there are
// no package-level globals.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ailert/ailert/internal/model"
	"github.com/robfig/cron/v3"
)

// State is the scheduler lifecycle state.
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

var (
	ErrAlreadyRunning = errors.New("scheduler is already running")
	ErrNotRunning     = errors.New("no scheduler is currently running")
	ErrAlreadyPaused  = errors.New("scheduler is already paused")
	ErrNotPaused      = errors.New("scheduler is not paused")
)

// Runner executes one scheduled newsletter run end to end (generate, render,
// store, deliver). A failed run is logged and the schedule continues.
type Runner func(ctx context.Context, task model.TaskType) error

// Scheduler wraps a cron instance with explicit Stopped/Running/Paused
// transitions. Pausing skips runs without dropping the cron entry.
type Scheduler struct {
	mu sync.Mutex

	state State
	task  model.TaskType
	entry cron.EntryID

	cron    *cron.Cron
	specs   map[model.TaskType]string
	run     Runner
	timeout time.Duration
	log     *slog.Logger
}

func New(dailySpec, weeklySpec string, run Runner) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		specs: map[model.TaskType]string{
			model.TaskDaily:  dailySpec,
			model.TaskWeekly: weeklySpec,
		},
		run:     run,
		timeout: 10 * time.Minute,
		log:     slog.Default(),
	}
}

// Start transitions Stopped -> Running for the given cadence.
func (s *Scheduler) Start(task model.TaskType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Stopped {
		return ErrAlreadyRunning
	}

	entry, err := s.cron.AddFunc(s.specs[task], func() { s.runOnce(task) })
	if err != nil {
		return err
	}
	s.entry = entry
	s.task = task
	s.state = Running
	s.cron.Start()
	s.log.Info("scheduler started", "task", string(task), "spec", s.specs[task])
	return nil
}

// Pause transitions Running -> Paused. Scheduled ticks still fire but skip
// the run.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Stopped:
		return ErrNotRunning
	case Paused:
		return ErrAlreadyPaused
	}
	s.state = Paused
	return nil
}

// Resume transitions Paused -> Running.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Stopped:
		return ErrNotRunning
	case Running:
		return ErrNotPaused
	}
	s.state = Running
	return nil
}

// Stop transitions to Stopped and drops the cron entry.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped {
		return ErrNotRunning
	}
	s.cron.Remove(s.entry)
	s.state = Stopped
	s.task = ""
	return nil
}

// Status reports the current state and active cadence.
func (s *Scheduler) Status() (State, model.TaskType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.task
}

func (s *Scheduler) runOnce(task model.TaskType) {
	s.mu.Lock()
	paused := s.state != Running
	s.mu.Unlock()
	if paused {
		s.log.Info("scheduler paused, skipping run", "task", string(task))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.run(ctx, task); err != nil {
		// The schedule keeps going; a failed edition only costs itself.
		s.log.Error("scheduled run failed", "task", string(task), "err", err)
		return
	}
	s.log.Info("scheduled run done", "task", string(task), "took", time.Since(start))
}
