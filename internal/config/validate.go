package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

const minSeason = 2018

// Validate checks every field that can be checked without the network. All
// problems are reported together.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	dur := func(path, raw string) {
		_, err := ParseDurationField(path, raw)
		add(err)
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		add(errors.New("telegram.token: required (or set BOT_TOKEN)"))
	}
	for _, id := range cfg.Telegram.OwnerUserIDs {
		if id <= 0 {
			add(fmt.Errorf("telegram.owner_user_ids: invalid user id %d", id))
		}
	}
	dur("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	if s := strings.TrimSpace(cfg.Telegram.NotifyChat); s != "" {
		if _, err := transport.ParseChatTarget(s); err != nil {
			add(fmt.Errorf("telegram.notify_chat: %w", err))
		}
	}
	if cfg.Telegram.CommandWorkers < 0 {
		add(errors.New("telegram.command_workers: must be >= 0"))
	}

	if cfg.League.ID < 0 {
		add(errors.New("league.id: must be > 0"))
	}
	if cfg.League.Year != 0 && cfg.League.Year < minSeason {
		add(fmt.Errorf("league.year: seasons before %d are not supported", minSeason))
	}
	dur("league.http_timeout", cfg.League.HTTPTimeout)
	if cfg.League.ActivityLimit < 0 {
		add(errors.New("league.activity_limit: must be >= 0"))
	}

	dur("watch.activity_interval", cfg.Watch.ActivityInterval)
	dur("watch.score_interval", cfg.Watch.ScoreInterval)
	if cfg.Watch.TouchdownDelta < 0 || cfg.Watch.FieldGoalDelta < 0 {
		add(errors.New("watch: score deltas must be >= 0"))
	}
	if td, fg := cfg.Watch.TouchdownDelta, cfg.Watch.FieldGoalDelta; td > 0 && fg > 0 && fg > td {
		add(errors.New("watch.field_goal_delta: must not exceed touchdown_delta"))
	}

	if n := cfg.Notifier; n != nil {
		if n.QueueSize < 0 || n.Burst < 0 || n.RetryMax < 0 || n.RatePerSec < 0 {
			add(errors.New("notifier: sizes and rates must be >= 0"))
		}
		dur("notifier.retry_base", n.RetryBase)
		dur("notifier.retry_max_delay", n.RetryMaxDelay)
		dur("notifier.send_timeout", n.SendTimeout)
		dur("notifier.dedup_window", n.DedupWindow)
	}

	if lv := strings.TrimSpace(cfg.Logging.Level); lv != "" && !logx.ValidLevel(lv) {
		add(fmt.Errorf("logging.level: unknown level %q", lv))
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add(errors.New("logging.file.path: required when file logging is enabled"))
	}

	if s := cfg.Storage; s != nil {
		switch strings.ToLower(strings.TrimSpace(s.Driver)) {
		case "", "none":
		case "file", "sqlite":
			if strings.TrimSpace(s.Path) == "" {
				add(errors.New("storage.path: required"))
			}
		default:
			add(fmt.Errorf("storage.driver: unknown driver %q (file, sqlite, none)", s.Driver))
		}
		dur("storage.busy_timeout", s.BusyTimeout)
	}

	dur("scheduler.first_run_delay", cfg.Scheduler.FirstRunDelay)

	if cfg.Ops.Enabled {
		addr := cfg.Ops.Addr
		if addr == "" {
			addr = DefaultOpsAddr
		}
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			add(fmt.Errorf("ops.addr: %w", err))
		} else if !isLoopback(host) && strings.TrimSpace(cfg.Ops.Token) == "" {
			add(errors.New("ops.token: required when ops.addr is not loopback"))
		}
	}
	return errors.Join(errs...)
}

const DefaultOpsAddr = "127.0.0.1:9090"

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
