package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ffbot/internal/config"
	"ffbot/internal/eventbus"
	"ffbot/pkg/logx"
)

// validateReload runs after config.Validate on every hot reload. It covers
// checks that need more than the config itself.
func (a *App) validateReload(_ context.Context, cfg *config.Config) error {
	if tz := strings.TrimSpace(cfg.Scheduler.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("scheduler.timezone: invalid %q: %w", tz, err)
		}
	}
	return nil
}

// reloadLoop applies committed configs until ctx is done. Bursts coalesce to
// the newest config.
func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	defer a.cfgm.Unsubscribe(sub)
	last := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
		drain:
			for {
				select {
				case newer, ok := <-sub:
					if !ok {
						return
					}
					cfg = newer
				default:
					break drain
				}
			}
			a.applyConfig(last, cfg)
			last = cfg
		}
	}
}

func (a *App) applyConfig(prev, cfg *config.Config) {
	change := config.Summarize(prev, cfg)
	if len(change.Sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(mapLogging(cfg))
	a.router.SetOwners(cfg.Telegram.OwnerUserIDs)
	a.notif.Apply(mapNotifier(cfg))

	// Baselines belong to one league season; the next tick of each watcher
	// re-primes them.
	if prev != nil && (prev.League.ID != cfg.League.ID || prev.League.Year != cfg.League.Year) {
		a.state.Reset()
		a.log.Info("league changed; detector baselines reset",
			logx.Int64("league_id", cfg.League.ID), logx.Int("year", cfg.League.Year))
	}

	// A newly configured notify_chat binds only when no channel is bound yet;
	// /set_channel always wins.
	if t, ok := notifyChat(cfg); ok {
		if _, bound := a.state.Channel(); !bound {
			a.state.SetChannel(t)
			a.log.Info("alert channel bound from config", logx.String("target", t.String()))
		}
	}

	if restart := change.NeedsRestart(); len(restart) > 0 {
		a.log.Warn("config changes need a restart to take effect", logx.String("sections", strings.Join(restart, ",")))
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(change.Sections, ","))}, change.Fields...)
	a.log.Info("config reloaded", fields...)
	eventbus.Publish(a.bus, eventbus.TypeConfigReloaded, change.Sections)
}
