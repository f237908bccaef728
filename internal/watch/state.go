package watch

import (
	"sync"
	"time"

	"ffbot/internal/league"
	"ffbot/internal/transport"
)

// State is the one piece of mutable data shared by the watchers and the
// set_channel command. All access goes through the mutex; callers never hold
// it across a network call.
type State struct {
	mu sync.Mutex

	channel    transport.ChatTarget
	hasChannel bool

	baseline    time.Time
	baselineSet bool

	scores map[int]float64 // team id -> last seen score; absent means 0
}

func NewState() *State {
	return &State{scores: map[int]float64{}}
}

// SetChannel binds the alert destination, replacing any previous binding.
func (s *State) SetChannel(t transport.ChatTarget) (prev transport.ChatTarget, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had = s.channel, s.hasChannel
	s.channel, s.hasChannel = t, true
	return prev, had
}

func (s *State) Channel() (transport.ChatTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel, s.hasChannel
}

// Reset drops both detector baselines. The channel binding survives.
func (s *State) Reset() {
	s.mu.Lock()
	s.baseline, s.baselineSet = time.Time{}, false
	s.scores = map[int]float64{}
	s.mu.Unlock()
}

// View is a copy of State for status reporting.
type View struct {
	Channel     transport.ChatTarget
	HasChannel  bool
	Baseline    time.Time
	BaselineSet bool
	Scores      map[int]float64
}

func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make(map[int]float64, len(s.scores))
	for k, v := range s.scores {
		scores[k] = v
	}
	return View{
		Channel:     s.channel,
		HasChannel:  s.hasChannel,
		Baseline:    s.baseline,
		BaselineSet: s.baselineSet,
		Scores:      scores,
	}
}

// advanceActivity applies one activity observation (newest first) and returns
// the entries to announce, oldest first. The first non-empty observation only
// sets the baseline.
func (s *State) advanceActivity(items []league.Activity) []league.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.baselineSet {
		if len(items) > 0 {
			s.baseline, s.baselineSet = items[0].At, true
		}
		return nil
	}

	var fresh []league.Activity
	for _, it := range items {
		if !it.At.After(s.baseline) {
			break
		}
		fresh = append(fresh, it)
	}
	if len(fresh) == 0 {
		return nil
	}
	s.baseline = fresh[0].At

	out := make([]league.Activity, len(fresh))
	for i, it := range fresh {
		out[len(fresh)-1-i] = it
	}
	return out
}

// ScoreAlert is one detected scoring jump.
type ScoreAlert struct {
	Kind  league.ScoreKind
	Side  league.Side
	Delta float64
}

// Thresholds classify a score delta. Touchdown is checked first.
type Thresholds struct {
	Touchdown float64
	FieldGoal float64
	// Prime records a team's first observed score without alerting.
	Prime bool
}

func (t Thresholds) classify(delta float64) (league.ScoreKind, bool) {
	switch {
	case delta >= t.Touchdown:
		return league.ScoreTouchdown, true
	case delta >= t.FieldGoal:
		return league.ScoreFieldGoal, true
	}
	return "", false
}

// advanceScores walks matchups home then away (home only on a bye) and always
// records the current score.
func (s *State) advanceScores(matchups []league.Matchup, th Thresholds) []ScoreAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ScoreAlert
	for _, m := range matchups {
		for _, sd := range m.Sides() {
			last, seen := s.scores[sd.Team.ID]
			s.scores[sd.Team.ID] = sd.Score
			if !seen && th.Prime {
				continue
			}
			delta := sd.Score - last
			if kind, ok := th.classify(delta); ok {
				out = append(out, ScoreAlert{Kind: kind, Side: sd, Delta: delta})
			}
		}
	}
	return out
}
