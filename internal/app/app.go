// Package app wires configuration, the ESPN client, the watchers, the chat
// transport and the optional ops server into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ffbot/internal/commands"
	"ffbot/internal/config"
	"ffbot/internal/espn"
	"ffbot/internal/eventbus"
	"ffbot/internal/metrics"
	"ffbot/internal/notifier"
	"ffbot/internal/observability/ops"
	rtsup "ffbot/internal/runtime/supervisor"
	"ffbot/internal/storage"
	"ffbot/internal/task/scheduler"
	"ffbot/internal/transport"
	"ffbot/internal/transport/telegram"
	"ffbot/internal/transport/telegram/router"
	"ffbot/internal/watch"
	"ffbot/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	log  logx.Logger
	logs *logx.Service

	bus     eventbus.Bus
	store   storage.Store
	metrics *metrics.Recorder
	adapter *telegram.Adapter
	espn    *espn.Client

	state  *watch.State
	watch  *watch.Service // nil when watch.enabled is false
	notif  *notifier.Service
	sched  *scheduler.Service
	router *router.Router
	ops    *ops.Service // nil when ops.enabled is false

	sup     *rtsup.Supervisor
	updates chan transport.Update
}

// New loads the config and builds every component. Nothing runs until Start.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logSvc, log := logx.New(mapLogging(cfg))
	cfgm.SetLogger(log)

	a := &App{
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		bus:     eventbus.New(),
		metrics: metrics.NewRecorder(),
		state:   watch.NewState(),
		updates: make(chan transport.Update, 256),
	}

	a.store, err = storage.Open(mapStorage(cfg), log)
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	a.adapter, err = telegram.New(mapTelegram(cfg), log)
	if err != nil {
		a.closeStore()
		_ = logSvc.Close()
		return nil, fmt.Errorf("telegram: %w", err)
	}

	a.espn = espn.NewClient(mapESPN(cfg, log))

	if t, ok := notifyChat(cfg); ok {
		a.state.SetChannel(t)
		log.Info("alert channel pre-bound", logx.String("target", t.String()))
	}

	a.notif = notifier.New(mapNotifier(cfg), notifier.Deps{
		Adapter: a.adapter,
		Log:     log,
		Bus:     a.bus,
		Store:   a.store,
		Metrics: a.metrics,
	})

	a.sched = scheduler.New(mapScheduler(cfg), log)
	if cfg.Watch.WatchEnabled() {
		a.watch = watch.New(mapWatch(cfg), watch.Deps{
			State:   a.state,
			Fetcher: a.espn,
			Sender:  a.notif,
			Query:   a.query,
			Log:     log,
			Metrics: a.metrics,
		})
		if err := a.watch.Register(a.sched); err != nil {
			a.closeStore()
			_ = logSvc.Close()
			return nil, err
		}
	} else {
		log.Warn("watchers disabled by config; only commands are served")
	}

	a.router = router.New(router.Config{
		Owners:      cfg.Telegram.OwnerUserIDs,
		BotUsername: a.adapter.Username(),
		Workers:     cfg.Telegram.CommandWorkers,
	}, router.Deps{
		Adapter: a.adapter,
		Log:     log,
		Store:   a.store,
		Metrics: a.metrics,
	})
	cd := commands.Deps{
		Fetcher: a.espn,
		Query:   a.query,
		State:   a.state,
		History: a.notif,
		Store:   a.store,
		Bus:     a.bus,
		Log:     log,
	}
	if a.watch != nil {
		cd.Watch = a.watch
	}
	a.router.SetCommands(commands.New(cd).Commands())

	if cfg.Ops.Enabled {
		od := ops.Deps{Log: log, Metrics: a.metrics}
		if a.watch != nil {
			od.Health = a.watch
		}
		a.ops = ops.New(mapOps(cfg), od)
	}
	return a, nil
}

// query reads the league settings on every call so a reload of league.id,
// league.year or the cookies applies to the next fetch.
func (a *App) query() espn.Query {
	return leagueQuery(a.cfgm.Get(), time.Now())
}

func (a *App) closeStore() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

// Healthy reports whether the process is still running normally. Watcher
// failures do not count: an ESPN outage is not fixed by a restart.
func (a *App) Healthy() bool {
	return a.sup != nil && a.sup.Context().Err() == nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log), rtsup.WithCancelOnError(true))
	run := a.sup.Context()

	if err := a.adapter.Start(run, a.updates); err != nil {
		return err
	}
	if a.notif.Enabled() {
		// detached so Stop can drain queued alerts after run is canceled
		a.notif.Start(context.WithoutCancel(run))
	} else {
		a.log.Warn("notifier disabled; alerts will be dropped")
	}
	a.sched.Start(run)
	if a.ops != nil {
		a.ops.Start(run)
	}

	a.sup.Go("commands.dispatch", func(c context.Context) error {
		return a.router.DispatchLoop(c, a.updates)
	})
	a.sup.Go0("telegram.menu", func(c context.Context) {
		mctx, cancel := context.WithTimeout(c, 15*time.Second)
		defer cancel()
		if err := a.router.UpdateMenu(mctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("command menu update failed", logx.Err(err))
		}
	})

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.log", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
			}
		}
	})

	a.cfgm.SetValidator(a.validateReload)
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) { a.reloadLoop(c, sub) })
	a.sup.Go("config.watch", func(c context.Context) error { return a.cfgm.Watch(c) })

	cfg := a.cfgm.Get()
	a.log.Info("app started",
		logx.Int64("league_id", cfg.League.ID),
		logx.Bool("watch", a.watch != nil),
		logx.Bool("ops", a.ops != nil),
		logx.String("bot", a.adapter.Username()))
	return nil
}

// Stop shuts components down in dependency order. Each step is bounded so one
// stuck component cannot stall the rest.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// cancels polling, dispatch and config watching at once
	a.sup.Cancel()

	a.step(ctx, "scheduler", 2*time.Second, func(c context.Context) error { a.sched.Stop(c); return nil })
	a.step(ctx, "ops", time.Second, func(c context.Context) error {
		if a.ops == nil {
			return nil
		}
		return a.ops.Stop(c)
	})
	a.step(ctx, "notifier", 3*time.Second, func(c context.Context) error { a.notif.Stop(c); return nil })
	a.step(ctx, "adapter", 2*time.Second, func(c context.Context) error { return a.adapter.Stop(c) })
	a.step(ctx, "storage", time.Second, func(context.Context) error {
		if a.store == nil {
			return nil
		}
		return a.store.Close()
	})
	a.step(ctx, "supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

// step runs fn with an upper bound that never extends the caller's deadline.
// A step that overruns is logged and left running.
func (a *App) step(ctx context.Context, name string, limit time.Duration, fn func(context.Context) error) {
	start := time.Now()
	if dl, ok := ctx.Deadline(); ok {
		limit = min(limit, time.Until(dl))
	}
	if limit <= 0 {
		a.log.Warn("stop step skipped, no time left", logx.String("name", name))
		return
	}
	stepCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic in stop step %s: %v", name, r)
			}
		}()
		done <- fn(stepCtx)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
		}
		a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
	case <-stepCtx.Done():
		a.log.Warn("stop step deadline reached (continuing)",
			logx.String("name", name),
			logx.Duration("elapsed", time.Since(start)))
	}
}
