package watch

import (
	"context"

	"ffbot/internal/league"
	"ffbot/internal/transport"
	"ffbot/pkg/logx"
)

const (
	DefaultTouchdownDelta = 6.0
	DefaultFieldGoalDelta = 3.0
)

// ScoreWatcher announces scoring jumps in the current matchups.
type ScoreWatcher struct {
	*base
	th Thresholds
}

func NewScoreWatcher(d Deps, th Thresholds) *ScoreWatcher {
	if th.Touchdown <= 0 {
		th.Touchdown = DefaultTouchdownDelta
	}
	if th.FieldGoal <= 0 {
		th.FieldGoal = DefaultFieldGoalDelta
	}
	return &ScoreWatcher{base: newBase("scores", d), th: th}
}

func (w *ScoreWatcher) Tick(ctx context.Context) {
	snap, to, ok := w.fetch(ctx)
	if !ok {
		return
	}
	for _, a := range w.deps.State.advanceScores(snap.Matchups, w.th) {
		w.log.Info("score jump",
			logx.String("kind", string(a.Kind)),
			logx.Int("team_id", a.Side.Team.ID),
			logx.Float64("delta", a.Delta))
		w.emit(ctx, to, kindFor(a.Kind), league.FormatScoreAlert(a.Kind, a.Side))
	}
}

func kindFor(k league.ScoreKind) string {
	if k == league.ScoreTouchdown {
		return transport.KindTouchdown
	}
	return transport.KindFieldGoal
}
