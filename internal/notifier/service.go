package notifier

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ffbot/internal/eventbus"
	"ffbot/internal/metrics"
	rtsup "ffbot/internal/runtime/supervisor"
	"ffbot/internal/storage"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

var (
	ErrDisabled  = errors.New("notifier disabled")
	ErrQueueFull = errors.New("notifier queue full")
	ErrStopped   = errors.New("notifier stopped")
)

type job struct {
	n   transport.Notification
	key string
}

// Service is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log     logx.Logger
	adapter transport.Adapter
	bus     eventbus.Bus
	store   storage.Store
	metrics *metrics.Recorder

	cfg     Config
	limiter *rate.Limiter

	accepting bool
	enqWG     sync.WaitGroup
	queue     chan job
	sup       *rtsup.Supervisor
	stopDone  chan struct{} // non-nil while stopping

	dmu   sync.Mutex
	dedup map[string]time.Time

	hmu     sync.Mutex
	history []HistoryItem
}

type Deps struct {
	Adapter transport.Adapter
	Log     logx.Logger
	Bus     eventbus.Bus
	Store   storage.Store
	Metrics *metrics.Recorder
}

func New(cfg Config, d Deps) *Service {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		adapter: d.Adapter,
		log:     log.With(logx.String("comp", "notifier")),
		bus:     d.Bus,
		store:   d.Store,
		metrics: d.Metrics,
		dedup:   map[string]time.Time{},
	}
	s.applyLocked(cfg)
	return s
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Apply swaps tunables at runtime. Queue size takes effect on next Start.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 10 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.DedupWindow < 0 {
		cfg.DedupWindow = 0
	}
	if cfg.DedupMaxEntries <= 0 {
		cfg.DedupMaxEntries = 2000
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	s.cfg = cfg
	s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst)
}

// Start launches the worker. It is idempotent.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stopDone != nil {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
		s.mu.Lock()
	}
	if s.queue != nil || !s.cfg.Enabled {
		s.mu.Unlock()
		return
	}
	s.queue = make(chan job, s.cfg.QueueSize)
	s.accepting = true
	s.sup = rtsup.New(ctx, rtsup.WithLogger(s.log))
	sup, q := s.sup, s.queue
	s.mu.Unlock()

	// One worker: alerts must reach the chat in the order they were queued.
	sup.GoRestart("notifier.worker", func(c context.Context) error {
		s.workerLoop(c, q)
		if s.stopping() || c.Err() != nil {
			return context.Canceled
		}
		return errors.New("notifier worker exited unexpectedly")
	})
	s.log.Info("notifier started", logx.Int("queue", cap(q)))
}

func (s *Service) stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopDone != nil
}

// Stop refuses new alerts and drains the queue until ctx expires.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	q, sup := s.queue, s.sup
	if q == nil {
		s.mu.Unlock()
		return
	}
	if s.stopDone != nil {
		done := s.stopDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
		}
		return
	}
	done := make(chan struct{})
	s.stopDone = done
	s.accepting = false
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.enqWG.Wait()
		close(q)
		_ = sup.Wait(context.Background())

		s.mu.Lock()
		s.queue, s.sup, s.stopDone = nil, nil, nil
		s.mu.Unlock()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		sup.Cancel()
		s.log.Warn("notifier stop timed out, pending alerts dropped")
	}
}

// Notify queues n for delivery. It never blocks on the network.
func (s *Service) Notify(ctx context.Context, n transport.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if !s.cfg.Enabled {
		s.mu.Unlock()
		return ErrDisabled
	}
	if !s.accepting || s.queue == nil {
		s.mu.Unlock()
		return ErrStopped
	}
	q := s.queue
	cfg := s.cfg
	s.enqWG.Add(1)
	s.mu.Unlock()
	defer s.enqWG.Done()

	key := dedupKey(n)
	if cfg.DedupWindow > 0 && !s.dedupAllow(ctx, key, cfg) {
		s.publish("alert.deduped", n, key, nil)
		return nil
	}

	s.publish(eventbus.TypeAlertQueued, n, key, nil)
	select {
	case q <- job{n: n, key: key}:
		return nil
	default:
		s.publish(eventbus.TypeAlertFailed, n, key, ErrQueueFull)
		s.metrics.RecordSend(n.Kind, ErrQueueFull)
		return ErrQueueFull
	}
}

func (s *Service) publish(typ string, n transport.Notification, key string, err error) {
	if s.bus == nil {
		return
	}
	ev := Event{Kind: n.Kind, ChatID: n.Target.ChatID, ThreadID: n.Target.ThreadID, Key: key, At: time.Now()}
	if err != nil {
		ev.Error = err.Error()
	}
	s.bus.Publish(eventbus.Event{Type: typ, Time: ev.At, Data: ev})
}

// History returns recent delivery outcomes, oldest first.
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}

func (s *Service) appendHistory(it HistoryItem, max int) {
	s.hmu.Lock()
	s.history = append(s.history, it)
	if over := len(s.history) - max; over > 0 {
		s.history = append([]HistoryItem(nil), s.history[over:]...)
	}
	s.hmu.Unlock()
}

func (s *Service) workerLoop(ctx context.Context, q <-chan job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q:
			if !ok {
				return
			}
			s.deliver(ctx, j)
		}
	}
}

func (s *Service) deliver(ctx context.Context, j job) {
	s.mu.Lock()
	cfg, lim := s.cfg, s.limiter
	s.mu.Unlock()
	if s.adapter == nil || j.n.Text == "" {
		return
	}

	start := time.Now()
	attempts, err := s.sendWithRetry(ctx, j, cfg, lim)
	if ctx.Err() != nil && err != nil {
		return
	}

	item := HistoryItem{At: time.Now(), Kind: j.n.Kind, Text: j.n.Text, Attempts: attempts}
	if err != nil {
		item.Error = err.Error()
		s.log.Warn("alert delivery failed", logx.String("kind", j.n.Kind), logx.Int("attempts", attempts), logx.Err(err))
		s.publish(eventbus.TypeAlertFailed, j.n, j.key, err)
	} else {
		s.log.Debug("alert delivered", logx.String("kind", j.n.Kind), logx.Int("attempts", attempts))
		s.publish(eventbus.TypeAlertSent, j.n, j.key, nil)
	}
	s.metrics.RecordSend(j.n.Kind, err)
	s.appendHistory(item, cfg.HistorySize)
	s.audit(ctx, j.n, start, err)
}

func (s *Service) sendWithRetry(ctx context.Context, j job, cfg Config, lim *rate.Limiter) (int, error) {
	maxAttempts := 1 + cfg.RetryMax
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return attempt - 1, err
		}
		callCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
		_, err := s.adapter.SendText(callCtx, j.n.Target, j.n.Text, j.n.Options)
		cancel()
		if err == nil {
			return attempt, nil
		}
		lastErr = err
		s.log.Debug("send failed", logx.Int("attempt", attempt), logx.Int("max", maxAttempts), logx.Err(err))
		if attempt == maxAttempts {
			break
		}
		t := time.NewTimer(retryDelay(cfg, attempt))
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return attempt, ctx.Err()
		}
	}
	return maxAttempts, lastErr
}

func (s *Service) audit(ctx context.Context, n transport.Notification, start time.Time, sendErr error) {
	if s.store == nil {
		return
	}
	e := storage.AuditEntry{
		At:       start,
		Kind:     storage.KindAlert,
		Action:   n.Kind,
		ChatID:   n.Target.ChatID,
		ThreadID: n.Target.ThreadID,
		OK:       sendErr == nil,
		TookMS:   time.Since(start).Milliseconds(),
	}
	if sendErr != nil {
		e.Error = sendErr.Error()
	}
	actx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.store.AppendAudit(actx, e); err != nil {
		s.log.Debug("audit append failed", logx.Err(err))
	}
}

func dedupKey(n transport.Notification) string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%d:%d|", n.Kind, n.Target.ChatID, n.Target.ThreadID)
	_, _ = h.Write([]byte(n.Text))
	return fmt.Sprintf("%x", h.Sum64())
}

// dedupAllow reports whether key is outside its suppression window and, if
// so, opens a new one.
func (s *Service) dedupAllow(ctx context.Context, key string, cfg Config) bool {
	now := time.Now()

	s.dmu.Lock()
	if until, ok := s.dedup[key]; ok && now.Before(until) {
		s.dmu.Unlock()
		return false
	}
	s.dmu.Unlock()

	if cfg.PersistDedup && s.store != nil {
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		until, ok, err := s.store.GetDedup(cctx, key)
		cancel()
		if err == nil && ok && now.Before(until) {
			s.dmu.Lock()
			s.dedup[key] = until
			s.dmu.Unlock()
			return false
		}
	}

	until := now.Add(cfg.DedupWindow)
	s.dmu.Lock()
	s.dedup[key] = until
	for k, u := range s.dedup {
		if !now.Before(u) {
			delete(s.dedup, k)
		}
	}
	for len(s.dedup) > cfg.DedupMaxEntries {
		var oldest string
		var oldestAt time.Time
		for k, u := range s.dedup {
			if oldest == "" || u.Before(oldestAt) {
				oldest, oldestAt = k, u
			}
		}
		delete(s.dedup, oldest)
	}
	s.dmu.Unlock()

	if cfg.PersistDedup && s.store != nil {
		pctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		if err := s.store.PutDedup(pctx, key, until); err != nil {
			s.log.Debug("dedup persist failed", logx.Err(err))
		}
		cancel()
	}
	return true
}

// retryDelay is the wait before attempt+1: base * 2^(attempt-1), capped, with
// 0.7..1.3 jitter.
func retryDelay(cfg Config, attempt int) time.Duration {
	d := cfg.RetryBase
	for i := 1; i < attempt && d < cfg.RetryMaxDelay; i++ {
		d *= 2
	}
	d = time.Duration(float64(d) * (0.7 + rand.Float64()*0.6))
	return min(d, cfg.RetryMaxDelay)
}
