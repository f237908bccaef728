package league

import (
	"fmt"
	"strconv"
	"strings"

	"ffbot/pkg/tgui"
)

// Rendering for Telegram HTML parse mode. Every dynamic string goes through
// tgui.Esc.

const maxTeamListRunes = 1000

func FormatLeagueInfo(s Snapshot) string {
	var b strings.Builder
	b.WriteString(tgui.B(fmt.Sprintf("%s (%d)", s.Name, s.Year)).String())
	b.WriteString("\nLeague Information\n\n")
	b.WriteString(tgui.B("Teams").String())
	b.WriteString("\n")

	names := make([]string, 0, len(s.Teams))
	for _, t := range s.Teams {
		names = append(names, "• "+t.Name)
	}
	list := tgui.TruncRunes(strings.Join(names, "\n"), maxTeamListRunes)
	b.WriteString(tgui.Esc(list).String())
	return b.String()
}

func FormatStandings(s Snapshot) string {
	var b strings.Builder
	b.WriteString(tgui.B(fmt.Sprintf("Standings: %s (%d)", s.Name, s.Year)).String())
	for i, t := range s.Standings() {
		b.WriteString("\n")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(tgui.Esc(t.Name).String())
		b.WriteString(" ")
		b.WriteString(tgui.Code(record(t)).String())
		b.WriteString(fmt.Sprintf(" PF %.2f", t.PointsFor))
	}
	return b.String()
}

func FormatMatchups(s Snapshot) string {
	var b strings.Builder
	b.WriteString(tgui.B(fmt.Sprintf("Week %d matchups", s.CurrentPeriod)).String())
	if len(s.Matchups) == 0 {
		b.WriteString("\nNo matchups this week.")
		return b.String()
	}
	for _, m := range s.Matchups {
		b.WriteString("\n")
		b.WriteString(formatSide(m.Home))
		if m.Away == nil {
			b.WriteString(" - ")
			b.WriteString(tgui.I("bye").String())
			continue
		}
		b.WriteString(" vs ")
		b.WriteString(formatSide(*m.Away))
	}
	return b.String()
}

func formatSide(sd Side) string {
	return fmt.Sprintf("%s %s (proj %.2f)", tgui.Esc(sd.Team.Name), tgui.B(fmt.Sprintf("%.2f", sd.Score)), sd.Projected)
}

func FormatTeam(t Team) string {
	var b strings.Builder
	b.WriteString(tgui.B(t.Name).String())
	if t.Abbrev != "" {
		b.WriteString(" (")
		b.WriteString(tgui.Esc(t.Abbrev).String())
		b.WriteString(")")
	}
	b.WriteString("\nRecord: ")
	b.WriteString(tgui.Code(record(t)).String())
	b.WriteString(fmt.Sprintf("\nPoints for: %.2f\nPoints against: %.2f", t.PointsFor, t.PointsAgainst))
	if len(t.Roster) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(tgui.B("Roster").String())
	for _, p := range t.Roster {
		b.WriteString("\n• ")
		b.WriteString(tgui.Esc(p.Name).String())
		if p.Position != "" {
			b.WriteString(" ")
			b.WriteString(tgui.I(p.Position).String())
		}
		if p.LineupSlot != "" && p.LineupSlot != p.Position {
			b.WriteString(" [")
			b.WriteString(tgui.Esc(p.LineupSlot).String())
			b.WriteString("]")
		}
	}
	return b.String()
}

// TeamNotFound is the reply for a team query that matched nothing.
func TeamNotFound(q string) string {
	return fmt.Sprintf("team not found: %q", q)
}

func FormatActivity(a Activity) string {
	return tgui.B("League activity").String() + "\n" + tgui.Esc(a.Description).String()
}

func FormatActivityList(items []Activity) string {
	if len(items) == 0 {
		return "No recent league activity."
	}
	var b strings.Builder
	b.WriteString(tgui.B("Recent activity").String())
	for _, a := range items {
		b.WriteString("\n")
		b.WriteString(tgui.Code(a.At.UTC().Format("Jan 02 15:04")).String())
		b.WriteString(" ")
		b.WriteString(tgui.Esc(a.Description).String())
	}
	return b.String()
}

// ScoreKind classifies a score jump.
type ScoreKind string

const (
	ScoreTouchdown ScoreKind = "touchdown"
	ScoreFieldGoal ScoreKind = "field goal"
)

func FormatScoreAlert(kind ScoreKind, sd Side) string {
	title := "Touchdown!"
	if kind == ScoreFieldGoal {
		title = "Field goal!"
	}
	return fmt.Sprintf("%s %s now has %s points (projected %.2f)",
		tgui.B(title), tgui.Esc(sd.Team.Name), tgui.B(fmt.Sprintf("%.2f", sd.Score)), sd.Projected)
}

func record(t Team) string {
	if t.Ties > 0 {
		return fmt.Sprintf("%d-%d-%d", t.Wins, t.Losses, t.Ties)
	}
	return fmt.Sprintf("%d-%d", t.Wins, t.Losses)
}

// Describe renders actions as "Team VERB Player" joined by ", ".
func Describe(actions []Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, strings.TrimSpace(a.Team+" "+a.Verb+" "+a.Player))
	}
	return strings.Join(parts, ", ")
}
