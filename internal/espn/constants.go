package espn

import "time"

const (
	defaultBaseURL       = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	defaultHTTPTimeout   = 20 * time.Second
	defaultActivityLimit = 25

	// ESPN moved to the v3 league endpoint in 2018; older seasons live under
	// leagueHistory with a different shape.
	minSupportedSeason = 2018
)

// Transaction message types in the league communication feed.
const (
	msgFreeAgentAdded = 178
	msgDropped        = 179
	msgWaiverAdded    = 180
	msgDroppedAlt     = 181
	msgDroppedFor     = 239
	msgTraded         = 244
)

var activityVerbs = map[int]string{
	msgFreeAgentAdded: "FA ADDED",
	msgDropped:        "DROPPED",
	msgWaiverAdded:    "WAIVER ADDED",
	msgDroppedAlt:     "DROPPED",
	msgDroppedFor:     "DROPPED",
	msgTraded:         "TRADED",
}

var activityMessageTypes = []int{msgFreeAgentAdded, msgWaiverAdded, msgDropped, msgDroppedFor, msgDroppedAlt, msgTraded}

var positionNames = map[int]string{
	1:  "QB",
	2:  "RB",
	3:  "WR",
	4:  "TE",
	5:  "K",
	7:  "P",
	9:  "DT",
	10: "DE",
	11: "LB",
	12: "CB",
	13: "S",
	14: "HC",
	16: "D/ST",
}

var lineupSlotNames = map[int]string{
	0:  "QB",
	2:  "RB",
	4:  "WR",
	6:  "TE",
	16: "D/ST",
	17: "K",
	20: "BE",
	21: "IR",
	23: "FLEX",
}
