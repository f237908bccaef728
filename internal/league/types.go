package league

import (
	"sort"
	"strings"
	"time"
)

// Snapshot is one point-in-time read of a league. It is never mutated after
// the fetcher returns it.
type Snapshot struct {
	LeagueID      int64
	Name          string
	Year          int
	CurrentPeriod int

	Teams    []Team    // provider order
	Matchups []Matchup // current matchup period, provider order
	Activity []Activity

	FetchedAt time.Time
}

type Team struct {
	ID            int
	Name          string
	Abbrev        string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
	Roster        []Player
}

type Player struct {
	ID         int
	Name       string
	Position   string
	LineupSlot string
	Points     float64
}

// TeamRef identifies a team inside a matchup.
type TeamRef struct {
	ID   int
	Name string
}

type Side struct {
	Team      TeamRef
	Score     float64
	Projected float64
}

// Matchup is one pairing in the current period. Away is nil on a bye week.
type Matchup struct {
	Home Side
	Away *Side
}

func (m Matchup) IsBye() bool { return m.Away == nil }

// Sides returns home first, then away when present.
func (m Matchup) Sides() []Side {
	if m.Away == nil {
		return []Side{m.Home}
	}
	return []Side{m.Home, *m.Away}
}

// Activity is one league transaction topic (trade, waiver, add/drop).
// Snapshot.Activity is ordered newest first.
type Activity struct {
	At          time.Time
	Description string
	Actions     []Action
}

type Action struct {
	Team   string
	Verb   string
	Player string
}

// FindTeam returns the first team (provider order) whose name contains q,
// ignoring case.
func (s Snapshot) FindTeam(q string) (Team, bool) {
	needle := strings.ToLower(strings.TrimSpace(q))
	for _, t := range s.Teams {
		if strings.Contains(strings.ToLower(t.Name), needle) {
			return t, true
		}
	}
	return Team{}, false
}

// Standings orders teams by wins, then points for. Ties keep provider order.
func (s Snapshot) Standings() []Team {
	out := append([]Team(nil), s.Teams...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].PointsFor > out[j].PointsFor
	})
	return out
}

func (s Snapshot) TeamByID(id int) (Team, bool) {
	for _, t := range s.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}
