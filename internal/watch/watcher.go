package watch

import (
	"context"
	"sync"
	"time"

	"ffbot/internal/espn"
	"ffbot/internal/league"
	"ffbot/internal/metrics"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

// Fetcher reads one league snapshot.
type Fetcher interface {
	Fetch(ctx context.Context, q espn.Query) (league.Snapshot, error)
}

// Sender delivers an alert. Calls from one watcher tick arrive in order.
type Sender interface {
	Notify(ctx context.Context, n transport.Notification) error
}

// Status describes the recent health of a watcher.
type Status struct {
	Name                string
	LastAttempt         time.Time
	LastSuccess         time.Time
	ConsecutiveFailures int
	LastError           string
	Alerts              uint64
}

// Healthy reports whether the watcher is not failing repeatedly. A watcher
// that never ran (no channel bound) is healthy.
func (s Status) Healthy(maxFailures int) bool {
	return s.ConsecutiveFailures < maxFailures
}

// Deps are shared by both watchers.
type Deps struct {
	State   *State
	Fetcher Fetcher
	Sender  Sender
	Query   func() espn.Query
	Log     logx.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

type base struct {
	name string
	deps Deps
	log  logx.Logger

	statusMu sync.RWMutex
	status   Status
}

func newBase(name string, d Deps) *base {
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &base{
		name:   name,
		deps:   d,
		log:    d.Log.With(logx.String("comp", "watch"), logx.String("watcher", name)),
		status: Status{Name: name},
	}
}

func (b *base) Status() Status {
	b.statusMu.RLock()
	defer b.statusMu.RUnlock()
	return b.status
}

// fetch runs one snapshot read and records the attempt. ok is false when the
// tick should stop: no channel bound or the fetch failed.
func (b *base) fetch(ctx context.Context) (snap league.Snapshot, to transport.ChatTarget, ok bool) {
	to, bound := b.deps.State.Channel()
	if !bound {
		return league.Snapshot{}, to, false
	}

	start := b.deps.Now()
	b.statusMu.Lock()
	b.status.LastAttempt = start
	b.statusMu.Unlock()

	snap, err := b.deps.Fetcher.Fetch(ctx, b.deps.Query())
	b.deps.Metrics.RecordFetch(b.name, b.deps.Now().Sub(start), err)

	b.statusMu.Lock()
	if err != nil {
		b.status.ConsecutiveFailures++
		b.status.LastError = err.Error()
	} else {
		b.status.ConsecutiveFailures = 0
		b.status.LastError = ""
		b.status.LastSuccess = b.deps.Now()
	}
	failures := b.status.ConsecutiveFailures
	b.statusMu.Unlock()
	b.deps.Metrics.SetWatcherFailures(b.name, failures)

	if err != nil {
		b.log.Warn("fetch failed, skipping tick", logx.Int("failures", failures), logx.Err(err))
		return league.Snapshot{}, to, false
	}
	return snap, to, true
}

func (b *base) emit(ctx context.Context, to transport.ChatTarget, kind, text string) {
	b.deps.Metrics.RecordAlert(kind)
	b.statusMu.Lock()
	b.status.Alerts++
	b.statusMu.Unlock()

	err := b.deps.Sender.Notify(ctx, transport.Notification{
		Kind:     kind,
		Priority: 5,
		Target:   to,
		Text:     text,
		Options:  transport.HTML(),
	})
	if err != nil {
		b.log.Warn("alert not queued", logx.String("kind", kind), logx.Err(err))
	}
}
