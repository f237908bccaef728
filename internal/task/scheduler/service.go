package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"ffbot/pkg/logx"
)

const (
	defaultFirstRunDelay = 2 * time.Second
	defaultHistorySize   = 50
)

var ErrBadInterval = errors.New("interval must be positive")

func New(cfg Config, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	if cfg.FirstRunDelay <= 0 {
		cfg.FirstRunDelay = defaultFirstRunDelay
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	return &Service{
		cfg:  cfg,
		log:  log.With(logx.String("comp", "scheduler")),
		defs: map[string]*scheduleDef{},
	}
}

// AddInterval registers job to run every interval, replacing any job with the
// same name. A run is cancelled after timeout (0 means every).
func (s *Service) AddInterval(name string, every time.Duration, timeout time.Duration, job func(ctx context.Context) error) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("name required")
	}
	if every <= 0 {
		return "", fmt.Errorf("%s: %w", name, ErrBadInterval)
	}
	if timeout <= 0 {
		timeout = every
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if old := s.defs[name]; old != nil && s.c != nil {
		s.c.Remove(old.entryID)
	}
	d := &scheduleDef{name: name, every: every, timeout: timeout, job: job}
	s.defs[name] = d
	if s.c != nil {
		s.addLocked(d)
	}
	s.log.Debug("schedule registered", logx.String("name", name), logx.Duration("every", every), logx.Duration("timeout", timeout))
	return name, nil
}

func (s *Service) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defs[name]
	if !ok {
		return false
	}
	if s.c != nil {
		s.c.Remove(d.entryID)
	}
	delete(s.defs, name)
	return true
}

// Start begins triggering. Runs use a context derived from ctx.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.loc = loadLocation(s.cfg.Timezone)
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithLocation(s.loc))
	for _, d := range s.defs {
		s.addLocked(d)
	}
	s.c.Start()
	s.log.Info("service started", logx.String("tz", s.loc.String()), logx.Int("schedules", len(s.defs)))
}

// Stop halts triggering, cancels in-flight runs and waits for them or ctx.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	c, cancel := s.c, s.cancel
	s.c, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	stopped := c.Stop()
	if cancel != nil {
		cancel()
	}
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("stop timed out with jobs running")
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

func (s *Service) addLocked(d *scheduleDef) {
	sched := intervalSchedule(d.every, s.cfg.FirstRunDelay, time.Now().In(s.loc), d.name)
	runCtx := s.runCtx
	d.entryID = s.c.Schedule(sched, cron.FuncJob(func() { s.fire(runCtx, d) }))
}

// fire runs d unless it is still running from an earlier tick.
func (s *Service) fire(ctx context.Context, d *scheduleDef) {
	if !d.running.CompareAndSwap(false, true) {
		d.skipped.Add(1)
		s.log.Debug("tick skipped, previous run still active", logx.String("name", d.name))
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer d.running.Store(false)

	started := time.Now()
	rctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	err := runSafe(rctx, d.job)
	d.runs.Add(1)
	took := time.Since(started)

	item := HistoryItem{Name: d.name, Started: started, Duration: took}
	if err != nil {
		d.failed.Add(1)
		item.Error = err.Error()
		s.log.Warn("job failed", logx.String("name", d.name), logx.Duration("took", took), logx.Err(err))
	} else {
		s.log.Trace("job done", logx.String("name", d.name), logx.Duration("took", took))
	}
	s.appendHistory(item)
}

func runSafe(ctx context.Context, job func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return job(ctx)
}

func (s *Service) appendHistory(it HistoryItem) {
	s.hmu.Lock()
	s.history = append(s.history, it)
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append([]HistoryItem(nil), s.history[over:]...)
	}
	s.hmu.Unlock()
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{Running: s.c != nil}
	if s.loc != nil {
		snap.Timezone = s.loc.String()
	}
	for _, d := range s.defs {
		info := ScheduleInfo{
			Name:    d.name,
			Every:   d.every,
			Timeout: d.timeout,
			Running: d.running.Load(),
			Runs:    d.runs.Load(),
			Skipped: d.skipped.Load(),
			Failed:  d.failed.Load(),
		}
		if s.c != nil {
			e := s.c.Entry(d.entryID)
			info.Next, info.Prev = e.Next, e.Prev
		}
		snap.Schedules = append(snap.Schedules, info)
	}
	s.mu.Unlock()
	sort.Slice(snap.Schedules, func(i, j int) bool { return snap.Schedules[i].Name < snap.Schedules[j].Name })

	s.hmu.Lock()
	snap.History = append([]HistoryItem(nil), s.history...)
	s.hmu.Unlock()
	return snap
}

func loadLocation(tz string) *time.Location {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}
