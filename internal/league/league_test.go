package league

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		LeagueID:      42,
		Name:          "Sunday <Funday>",
		Year:          2024,
		CurrentPeriod: 3,
		Teams: []Team{
			{ID: 1, Name: "Gridiron Gang", Abbrev: "GG", Wins: 1, Losses: 1, PointsFor: 210.5},
			{ID: 2, Name: "Team Taco", Abbrev: "TACO", Wins: 2, Losses: 0, PointsFor: 190},
			{ID: 3, Name: "Taco Tuesday", Abbrev: "TT", Wins: 1, Losses: 1, PointsFor: 250.25,
				Roster: []Player{{ID: 9, Name: "Some Back", Position: "RB", LineupSlot: "FLEX"}}},
		},
		Matchups: []Matchup{
			{Home: Side{Team: TeamRef{ID: 1, Name: "Gridiron Gang"}, Score: 10, Projected: 99}, Away: &Side{Team: TeamRef{ID: 2, Name: "Team Taco"}, Score: 20, Projected: 101}},
			{Home: Side{Team: TeamRef{ID: 3, Name: "Taco Tuesday"}, Score: 5}},
		},
	}
}

func TestFindTeam(t *testing.T) {
	t.Parallel()
	s := sampleSnapshot()

	got, ok := s.FindTeam("taco")
	if !ok {
		t.Fatal("expected a match")
	}
	// Multiple matches: first in provider order wins.
	if got.ID != 2 {
		t.Fatalf("FindTeam(taco) = team %d, want 2", got.ID)
	}

	if _, ok := s.FindTeam("nobody"); ok {
		t.Fatal("expected no match")
	}
}

func TestStandingsOrder(t *testing.T) {
	t.Parallel()
	s := sampleSnapshot()
	var ids []int
	for _, tm := range s.Standings() {
		ids = append(ids, tm.ID)
	}
	if diff := cmp.Diff([]int{2, 3, 1}, ids); diff != "" {
		t.Fatalf("standings order mismatch (-want +got):\n%s", diff)
	}
	// Source slice untouched.
	if s.Teams[0].ID != 1 {
		t.Fatal("Standings mutated snapshot teams")
	}
}

func TestMatchupSides(t *testing.T) {
	t.Parallel()
	s := sampleSnapshot()
	if n := len(s.Matchups[0].Sides()); n != 2 {
		t.Fatalf("sides = %d, want 2", n)
	}
	if !s.Matchups[1].IsBye() || len(s.Matchups[1].Sides()) != 1 {
		t.Fatal("bye matchup should expose only home side")
	}
}

func TestFormatEscapesHTML(t *testing.T) {
	t.Parallel()
	s := sampleSnapshot()
	out := FormatLeagueInfo(s)
	if !strings.Contains(out, "Sunday &lt;Funday&gt; (2024)") {
		t.Fatalf("league name not escaped: %q", out)
	}
	if !strings.Contains(out, "• Team Taco") {
		t.Fatalf("team list missing: %q", out)
	}

	m := FormatMatchups(s)
	if !strings.Contains(m, "Taco Tuesday <b>5.00</b> (proj 0.00) - <i>bye</i>") {
		t.Fatalf("bye not rendered: %q", m)
	}

	tm := FormatTeam(s.Teams[2])
	if !strings.Contains(tm, "Some Back <i>RB</i> [FLEX]") {
		t.Fatalf("roster not rendered: %q", tm)
	}
}

func TestFormatScoreAlert(t *testing.T) {
	t.Parallel()
	sd := Side{Team: TeamRef{ID: 1, Name: "A&B"}, Score: 7, Projected: 101.5}
	got := FormatScoreAlert(ScoreTouchdown, sd)
	want := "<b>Touchdown!</b> A&amp;B now has <b>7.00</b> points (projected 101.50)"
	if got != want {
		t.Fatalf("FormatScoreAlert = %q, want %q", got, want)
	}
	if !strings.HasPrefix(FormatScoreAlert(ScoreFieldGoal, sd), "<b>Field goal!</b>") {
		t.Fatal("field goal title missing")
	}
}

func TestDescribeAndActivityList(t *testing.T) {
	t.Parallel()
	d := Describe([]Action{{Team: "Team Taco", Verb: "FA ADDED", Player: "Joe"}, {Team: "Team Taco", Verb: "DROPPED", Player: "Moe"}})
	if d != "Team Taco FA ADDED Joe, Team Taco DROPPED Moe" {
		t.Fatalf("Describe = %q", d)
	}
	if FormatActivityList(nil) != "No recent league activity." {
		t.Fatal("empty activity list text changed")
	}
	at := time.Date(2024, 9, 8, 17, 30, 0, 0, time.UTC)
	out := FormatActivityList([]Activity{{At: at, Description: d}})
	if !strings.Contains(out, "<code>Sep 08 17:30</code> Team Taco FA ADDED Joe") {
		t.Fatalf("activity list = %q", out)
	}
}

func TestTeamNotFound(t *testing.T) {
	t.Parallel()
	if got := TeamNotFound("xyz"); got != `team not found: "xyz"` {
		t.Fatalf("TeamNotFound = %q", got)
	}
}
