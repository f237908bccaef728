package watch

import (
	"context"

	"ffbot/internal/league"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

// ActivityWatcher announces new league transactions.
//
// The first successful observation with at least one entry only records the
// newest timestamp as the baseline. Later ticks announce every entry strictly
// newer than the baseline, oldest first, and move the baseline forward.
type ActivityWatcher struct {
	*base
}

func NewActivityWatcher(d Deps) *ActivityWatcher {
	return &ActivityWatcher{base: newBase("activity", d)}
}

func (w *ActivityWatcher) Tick(ctx context.Context) {
	snap, to, ok := w.fetch(ctx)
	if !ok {
		return
	}
	fresh := w.deps.State.advanceActivity(snap.Activity)
	if len(fresh) == 0 {
		return
	}
	w.log.Info("new league activity", logx.Int("count", len(fresh)))
	for _, a := range fresh {
		w.emit(ctx, to, transport.KindActivity, league.FormatActivity(a))
	}
}
