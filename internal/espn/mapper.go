package espn

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"ffbot/internal/league"
)

func teamName(t teamWire) string {
	if n := strings.TrimSpace(t.Name); n != "" {
		return n
	}
	return strings.TrimSpace(t.Location + " " + t.Nickname)
}

func mapTeams(in []teamWire) []league.Team {
	out := make([]league.Team, 0, len(in))
	for _, t := range in {
		rec := t.Record.Overall
		tm := league.Team{
			ID:            t.ID,
			Name:          teamName(t),
			Abbrev:        t.Abbrev,
			Wins:          rec.Wins,
			Losses:        rec.Losses,
			Ties:          rec.Ties,
			PointsFor:     rec.PointsFor,
			PointsAgainst: rec.PointsAgainst,
		}
		for _, e := range t.Roster.Entries {
			p := e.PlayerPoolEntry.Player
			id := p.ID
			if id == 0 {
				id = e.PlayerID
			}
			tm.Roster = append(tm.Roster, league.Player{
				ID:         id,
				Name:       p.FullName,
				Position:   positionNames[p.DefaultPositionID],
				LineupSlot: lineupSlotNames[e.LineupSlotID],
				Points:     e.PlayerPoolEntry.AppliedStatTotal,
			})
		}
		out = append(out, tm)
	}
	return out
}

func mapSide(s *sideWire, names map[int]string) league.Side {
	score := s.TotalPoints
	if s.TotalPointsLive != nil {
		score = *s.TotalPointsLive
	}
	var proj float64
	if s.TotalProjectedPointsLive != nil {
		proj = *s.TotalProjectedPointsLive
	}
	return league.Side{
		Team:      league.TeamRef{ID: s.TeamID, Name: names[s.TeamID]},
		Score:     score,
		Projected: proj,
	}
}

// mapMatchups keeps only the current period. A schedule entry without a home
// side is skipped; one without an away side is a bye.
func mapMatchups(in []scheduleWire, period int, names map[int]string) []league.Matchup {
	var out []league.Matchup
	for _, s := range in {
		if s.MatchupPeriodID != period || s.Home == nil {
			continue
		}
		m := league.Matchup{Home: mapSide(s.Home, names)}
		if s.Away != nil {
			away := mapSide(s.Away, names)
			m.Away = &away
		}
		out = append(out, m)
	}
	return out
}

// mapActivity turns communication topics into activity items, newest first.
// Topics without a recognised transaction message are dropped.
func mapActivity(topics []topicWire, teams map[int]string, players map[int]string) []league.Activity {
	out := make([]league.Activity, 0, len(topics))
	for _, tp := range topics {
		var actions []league.Action
		for _, m := range tp.Messages {
			verb, ok := activityVerbs[m.MessageTypeID]
			if !ok {
				continue
			}
			teamID := m.To
			switch m.MessageTypeID {
			case msgTraded:
				teamID = m.From
			case msgDroppedFor:
				teamID = m.For
			}
			actions = append(actions, league.Action{
				Team:   teams[teamID],
				Verb:   verb,
				Player: playerName(players, m.TargetID),
			})
		}
		if len(actions) == 0 {
			continue
		}
		out = append(out, league.Activity{
			At:          time.UnixMilli(tp.Date).UTC(),
			Description: league.Describe(actions),
			Actions:     actions,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

func playerName(players map[int]string, id int) string {
	if n, ok := players[id]; ok && n != "" {
		return n
	}
	return "player #" + strconv.Itoa(id)
}

func teamNames(teams []league.Team) map[int]string {
	out := make(map[int]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out
}

func playerNames(teams []league.Team) map[int]string {
	out := make(map[int]string)
	for _, t := range teams {
		for _, p := range t.Roster {
			out[p.ID] = p.Name
		}
	}
	return out
}
