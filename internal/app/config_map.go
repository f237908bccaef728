package app

import (
	"strings"
	"time"

	"ffbot/internal/config"
	"ffbot/internal/espn"
	"ffbot/internal/notifier"
	"ffbot/internal/observability/ops"
	"ffbot/internal/storage"
	"ffbot/internal/task/scheduler"
	"ffbot/internal/transport"
	"ffbot/internal/transport/telegram"
	"ffbot/internal/watch"
	"ffbot/pkg/logx"
)

// The mappers below run on validated configs, so malformed durations never
// reach them; DurationOr falls back to the default anyway.

func mapLogging(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapStorage(cfg *config.Config) storage.Config {
	sc := cfg.Storage
	if sc == nil {
		return storage.Config{}
	}
	return storage.Config{
		Driver:      strings.ToLower(strings.TrimSpace(sc.Driver)),
		Path:        strings.TrimSpace(sc.Path),
		BusyTimeout: config.DurationOr(sc.BusyTimeout, time.Second),
	}
}

// mapNotifier defaults to enabled when the section is omitted. Dedup is off
// unless configured: the detectors never emit the same change twice.
func mapNotifier(cfg *config.Config) notifier.Config {
	out := notifier.Config{
		Enabled:    true,
		QueueSize:  256,
		RatePerSec: 1,
		Burst:      3,
		RetryMax:   3,
	}
	n := cfg.Notifier
	if n == nil {
		return out
	}
	out.Enabled = n.Enabled
	out.PersistDedup = n.PersistDedup
	if n.QueueSize > 0 {
		out.QueueSize = n.QueueSize
	}
	if n.RatePerSec > 0 {
		out.RatePerSec = n.RatePerSec
	}
	if n.Burst > 0 {
		out.Burst = n.Burst
	}
	if n.RetryMax > 0 {
		out.RetryMax = n.RetryMax
	}
	if n.DedupMaxEntries > 0 {
		out.DedupMaxEntries = n.DedupMaxEntries
	}
	if n.HistorySize > 0 {
		out.HistorySize = n.HistorySize
	}
	out.RetryBase = config.DurationOr(n.RetryBase, 0)
	out.RetryMaxDelay = config.DurationOr(n.RetryMaxDelay, 0)
	out.SendTimeout = config.DurationOr(n.SendTimeout, 0)
	out.DedupWindow = config.DurationOr(n.DedupWindow, 0)
	return out
}

func mapTelegram(cfg *config.Config) telegram.Config {
	return telegram.Config{
		Token:       strings.TrimSpace(cfg.Telegram.Token),
		PollTimeout: config.DurationOr(cfg.Telegram.PollTimeout, 10*time.Second),
	}
}

func mapESPN(cfg *config.Config, log logx.Logger) espn.Config {
	return espn.Config{
		BaseURL:       cfg.League.BaseURL,
		Timeout:       config.DurationOr(cfg.League.HTTPTimeout, 0),
		ActivityLimit: cfg.League.ActivityLimit,
		Log:           log,
	}
}

func mapWatch(cfg *config.Config) watch.Config {
	w := cfg.Watch
	return watch.Config{
		ActivityInterval: config.DurationOr(w.ActivityInterval, watch.DefaultActivityInterval),
		ScoreInterval:    config.DurationOr(w.ScoreInterval, watch.DefaultScoreInterval),
		Thresholds: watch.Thresholds{
			Touchdown: w.TouchdownDelta,
			FieldGoal: w.FieldGoalDelta,
			Prime:     w.PrimeScores,
		},
	}
}

func mapScheduler(cfg *config.Config) scheduler.Config {
	return scheduler.Config{
		Timezone:      strings.TrimSpace(cfg.Scheduler.Timezone),
		FirstRunDelay: config.DurationOr(cfg.Scheduler.FirstRunDelay, 0),
		HistorySize:   cfg.Scheduler.HistorySize,
	}
}

func mapOps(cfg *config.Config) ops.Config {
	return ops.Config{
		Addr:        strings.TrimSpace(cfg.Ops.Addr),
		Token:       strings.TrimSpace(cfg.Ops.Token),
		Pprof:       cfg.Ops.Pprof,
		MaxFailures: cfg.Watch.MaxFailures,
	}
}

// notifyChat returns the pre-bound alert channel, if configured.
func notifyChat(cfg *config.Config) (transport.ChatTarget, bool) {
	s := strings.TrimSpace(cfg.Telegram.NotifyChat)
	if s == "" {
		return transport.ChatTarget{}, false
	}
	t, err := transport.ParseChatTarget(s)
	if err != nil {
		return transport.ChatTarget{}, false
	}
	return t, true
}

// leagueQuery builds the fetch query from the current config. A zero year
// means the current season; cookies are sent only when both are set.
func leagueQuery(cfg *config.Config, now time.Time) espn.Query {
	if cfg == nil {
		return espn.Query{}
	}
	l := cfg.League
	q := espn.Query{LeagueID: l.ID, Year: l.Year}
	if q.Year == 0 {
		q.Year = now.Year()
	}
	s2, swid := strings.TrimSpace(l.EspnS2), strings.TrimSpace(l.SWID)
	if s2 != "" && swid != "" {
		q.Creds = &espn.Credentials{EspnS2: s2, SWID: swid}
	}
	return q
}
