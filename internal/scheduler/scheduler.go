// Package scheduler owns the periodic refresh tasks. One scheduler runs all
// widgets' refreshes as named tasks with their own periods, replacing the
// per-widget timer-plus-guard-flag pattern: single-flight is enforced here
// once, a failing run never stops the schedule, and Stop cancels future
// runs while letting an in-flight run finish.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Task struct {
	Name   string
	Period time.Duration
	Fn     func(context.Context) error
}

type TaskStatus struct {
	Name     string    `json:"name"`
	Period   string    `json:"period"`
	Running  bool      `json:"running"`
	LastRun  time.Time `json:"last_run"`
	LastErr  string    `json:"last_error,omitempty"`
	Runs     int       `json:"runs"`
	Failures int       `json:"failures"`
}

type taskState struct {
	task Task

	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	lastErr  string
	runs     int
	failures int
}

type Scheduler struct {
	logger zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*taskState
	order []string

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func New(logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		tasks:  map[string]*taskState{},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) Register(task Task) error {
	if task.Name == "" || task.Fn == nil {
		return fmt.Errorf("scheduler: task needs a name and a fn")
	}
	if task.Period <= 0 {
		return fmt.Errorf("scheduler: task %s needs a positive period", task.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler: cannot register %s after start", task.Name)
	}
	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("scheduler: duplicate task %s", task.Name)
	}
	s.tasks[task.Name] = &taskState{task: task}
	s.order = append(s.order, task.Name)
	return nil
}

// Start launches one loop per task. Each task runs once immediately, then
// on its period.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	states := make([]*taskState, 0, len(s.order))
	for _, name := range s.order {
		states = append(states, s.tasks[name])
	}
	s.mu.Unlock()

	for _, ts := range states {
		s.wg.Add(1)
		go s.loop(ts)
	}
}

func (s *Scheduler) loop(ts *taskState) {
	defer s.wg.Done()

	s.run(ts)

	ticker := time.NewTicker(ts.task.Period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.run(ts)
		case <-s.ctx.Done():
			return
		}
	}
}

// run executes the task unless a previous invocation is still in flight.
func (s *Scheduler) run(ts *taskState) {
	ts.mu.Lock()
	if ts.running {
		ts.mu.Unlock()
		s.logger.Debug().Str("task", ts.task.Name).Msg("refresh still in flight, skipping tick")
		return
	}
	ts.running = true
	ts.mu.Unlock()

	err := ts.task.Fn(s.ctx)

	ts.mu.Lock()
	ts.running = false
	ts.lastRun = time.Now().UTC()
	ts.runs++
	if err != nil {
		ts.failures++
		ts.lastErr = err.Error()
	} else {
		ts.lastErr = ""
	}
	ts.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("task", ts.task.Name).Msg("refresh task failed")
	}
}

// RunNow triggers an immediate run. Returns false when the task does not
// exist or is already in flight.
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	ts, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return false
	}

	ts.mu.Lock()
	if ts.running {
		ts.mu.Unlock()
		return false
	}
	ts.mu.Unlock()

	s.run(ts)
	return true
}

// Stop cancels future runs and waits for in-flight runs to complete.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TaskStatus, 0, len(s.order))
	for _, name := range s.order {
		ts := s.tasks[name]
		ts.mu.Lock()
		out = append(out, TaskStatus{
			Name:     ts.task.Name,
			Period:   ts.task.Period.String(),
			Running:  ts.running,
			LastRun:  ts.lastRun,
			LastErr:  ts.lastErr,
			Runs:     ts.runs,
			Failures: ts.failures,
		})
		ts.mu.Unlock()
	}
	return out
}
