package config

import (
	"slices"
	"strings"

	"ffbot/pkg/logx"
)

// Sections that hot reload cannot apply; the process must restart.
var restartSections = []string{"telegram.token", "watch", "storage", "ops", "scheduler"}

// Change summarizes a reload for logging. Fields never carry secrets.
type Change struct {
	Sections []string
	Fields   []logx.Field
}

// NeedsRestart lists changed sections that only take effect after restart.
func (c Change) NeedsRestart() []string {
	var out []string
	for _, s := range c.Sections {
		if slices.Contains(restartSections, s) {
			out = append(out, s)
		}
	}
	return out
}

func Summarize(oldCfg, newCfg *Config) Change {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}
	var c Change
	mark := func(section string, fields ...logx.Field) {
		c.Sections = append(c.Sections, section)
		c.Fields = append(c.Fields, fields...)
	}

	ot, nt := oldCfg.Telegram, newCfg.Telegram
	if ot.Token != nt.Token {
		mark("telegram.token")
	}
	if ot.PollTimeout != nt.PollTimeout || !slices.Equal(ot.OwnerUserIDs, nt.OwnerUserIDs) ||
		ot.NotifyChat != nt.NotifyChat || ot.CommandWorkers != nt.CommandWorkers {
		mark("telegram",
			logx.Int("telegram.owner_count", len(nt.OwnerUserIDs)),
			logx.String("telegram.notify_chat", nt.NotifyChat),
		)
	}

	ol, nl := oldCfg.League, newCfg.League
	if ol != nl {
		mark("league",
			logx.Int64("league.id", nl.ID),
			logx.Int("league.year", nl.Year),
			logx.Bool("league.credentials", nl.EspnS2 != "" && nl.SWID != ""),
		)
	}

	ow, nw := oldCfg.Watch, newCfg.Watch
	if ow.WatchEnabled() != nw.WatchEnabled() || ow.ActivityInterval != nw.ActivityInterval ||
		ow.ScoreInterval != nw.ScoreInterval || ow.TouchdownDelta != nw.TouchdownDelta ||
		ow.FieldGoalDelta != nw.FieldGoalDelta || ow.PrimeScores != nw.PrimeScores || ow.MaxFailures != nw.MaxFailures {
		mark("watch",
			logx.Bool("watch.enabled", nw.WatchEnabled()),
			logx.String("watch.activity_interval", nw.ActivityInterval),
			logx.String("watch.score_interval", nw.ScoreInterval),
		)
	}

	if !ptrEqual(oldCfg.Notifier, newCfg.Notifier) {
		n := newCfg.Notifier
		if n == nil {
			n = &NotifierConfig{Enabled: true}
		}
		mark("notifier", logx.Bool("notifier.enabled", n.Enabled), logx.Float64("notifier.rate_per_sec", n.RatePerSec))
	}

	if oldCfg.Logging != newCfg.Logging {
		mark("logging",
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if !ptrEqual(oldCfg.Storage, newCfg.Storage) {
		driver := ""
		if newCfg.Storage != nil {
			driver = strings.TrimSpace(newCfg.Storage.Driver)
		}
		mark("storage", logx.String("storage.driver", driver))
	}

	if oldCfg.Scheduler != newCfg.Scheduler {
		mark("scheduler", logx.String("scheduler.timezone", newCfg.Scheduler.Timezone))
	}

	oo, no := oldCfg.Ops, newCfg.Ops
	if oo.Enabled != no.Enabled || oo.Addr != no.Addr || oo.Pprof != no.Pprof || oo.Token != no.Token {
		mark("ops", logx.Bool("ops.enabled", no.Enabled), logx.String("ops.addr", no.Addr))
	}
	return c
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
