package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"ffbot/pkg/logx"
)

type Config struct {
	Timezone string // IANA TZ, e.g. "America/New_York"
	// FirstRunDelay is how long after Start the first tick of every job fires.
	FirstRunDelay time.Duration
	HistorySize   int
}

type scheduleDef struct {
	name    string
	every   time.Duration
	timeout time.Duration
	job     func(ctx context.Context) error
	entryID cron.EntryID

	running atomic.Bool
	runs    atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64
}

type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config
	loc *time.Location

	c      *cron.Cron
	defs   map[string]*scheduleDef
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	hmu     sync.Mutex
	history []HistoryItem
}

type HistoryItem struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Error    string
}

type ScheduleInfo struct {
	Name    string
	Every   time.Duration
	Timeout time.Duration
	Next    time.Time
	Prev    time.Time
	Running bool
	Runs    uint64
	Skipped uint64
	Failed  uint64
}

type Snapshot struct {
	Running   bool
	Timezone  string
	Schedules []ScheduleInfo
	History   []HistoryItem
}
