package espn

// Wire types for the ESPN fantasy football v3 API. Only the fields the bot
// reads are declared.

type leagueResponse struct {
	ID              int64          `json:"id"`
	SeasonID        int            `json:"seasonId"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	Status          statusWire     `json:"status"`
	Settings        settingsWire   `json:"settings"`
	Teams           []teamWire     `json:"teams"`
	Schedule        []scheduleWire `json:"schedule"`
}

type statusWire struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	IsActive             bool `json:"isActive"`
}

type settingsWire struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type teamWire struct {
	ID       int        `json:"id"`
	Abbrev   string     `json:"abbrev"`
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Nickname string     `json:"nickname"`
	Record   recordWire `json:"record"`
	Roster   rosterWire `json:"roster"`
}

type recordWire struct {
	Overall recordDetailsWire `json:"overall"`
}

type recordDetailsWire struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type rosterWire struct {
	Entries []rosterEntryWire `json:"entries"`
}

type rosterEntryWire struct {
	PlayerID        int                 `json:"playerId"`
	LineupSlotID    int                 `json:"lineupSlotId"`
	PlayerPoolEntry playerPoolEntryWire `json:"playerPoolEntry"`
}

type playerPoolEntryWire struct {
	ID               int        `json:"id"`
	AppliedStatTotal float64    `json:"appliedStatTotal"`
	Player           playerWire `json:"player"`
}

type playerWire struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
}

type scheduleWire struct {
	ID              int       `json:"id"`
	MatchupPeriodID int       `json:"matchupPeriodId"`
	Home            *sideWire `json:"home"`
	Away            *sideWire `json:"away"`
}

type sideWire struct {
	TeamID                   int      `json:"teamId"`
	TotalPoints              float64  `json:"totalPoints"`
	TotalPointsLive          *float64 `json:"totalPointsLive"`
	TotalProjectedPointsLive *float64 `json:"totalProjectedPointsLive"`
}

type communicationResponse struct {
	Topics []topicWire `json:"topics"`
}

type topicWire struct {
	ID       string        `json:"id"`
	Date     int64         `json:"date"` // unix millis
	Type     string        `json:"type"`
	Messages []messageWire `json:"messages"`
}

type messageWire struct {
	MessageTypeID int `json:"messageTypeId"`
	TargetID      int `json:"targetId"`
	To            int `json:"to"`
	From          int `json:"from"`
	For           int `json:"for"`
}

// proPlayerWire is one entry of the season player list (view=players_wl).
type proPlayerWire struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}
