package watch

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultActivityInterval = 5 * time.Minute
	DefaultScoreInterval    = time.Minute
)

// Scheduler runs a job on a fixed interval and skips a run while the previous
// one is still going.
type Scheduler interface {
	AddInterval(name string, every time.Duration, timeout time.Duration, job func(ctx context.Context) error) (string, error)
}

type Config struct {
	ActivityInterval time.Duration
	ScoreInterval    time.Duration
	Thresholds       Thresholds
}

// Service owns both watchers over one State.
type Service struct {
	cfg      Config
	State    *State
	Activity *ActivityWatcher
	Scores   *ScoreWatcher
}

func New(cfg Config, d Deps) *Service {
	if cfg.ActivityInterval <= 0 {
		cfg.ActivityInterval = DefaultActivityInterval
	}
	if cfg.ScoreInterval <= 0 {
		cfg.ScoreInterval = DefaultScoreInterval
	}
	if d.State == nil {
		d.State = NewState()
	}
	return &Service{
		cfg:      cfg,
		State:    d.State,
		Activity: NewActivityWatcher(d),
		Scores:   NewScoreWatcher(d, cfg.Thresholds),
	}
}

// Register adds both watchers as interval tasks. A tick may run at most one
// interval long.
func (s *Service) Register(sched Scheduler) error {
	if _, err := sched.AddInterval("watch.activity", s.cfg.ActivityInterval, s.cfg.ActivityInterval, func(ctx context.Context) error {
		s.Activity.Tick(ctx)
		return nil
	}); err != nil {
		return fmt.Errorf("register activity watcher: %w", err)
	}
	if _, err := sched.AddInterval("watch.scores", s.cfg.ScoreInterval, s.cfg.ScoreInterval, func(ctx context.Context) error {
		s.Scores.Tick(ctx)
		return nil
	}); err != nil {
		return fmt.Errorf("register score watcher: %w", err)
	}
	return nil
}

func (s *Service) Statuses() []Status {
	return []Status{s.Activity.Status(), s.Scores.Status()}
}
