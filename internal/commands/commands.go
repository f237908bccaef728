// Package commands implements the chat commands of the bot. Every command
// performs its own league fetch; nothing is shared with the watchers except
// the channel binding in watch.State.
package commands

import (
	"context"
	"errors"
	"time"

	"ffbot/internal/espn"
	"ffbot/internal/eventbus"
	"ffbot/internal/league"
	"ffbot/internal/notifier"
	"ffbot/internal/storage"
	"ffbot/internal/transport/telegram/router"
	"ffbot/internal/watch"
	"ffbot/pkg/logx"
)

const (
	msgNoLeague    = "League ID not configured."
	msgFetchFailed = "Failed to connect to ESPN league. Please check credentials."
)

type Fetcher interface {
	Fetch(ctx context.Context, q espn.Query) (league.Snapshot, error)
}

type StatusSource interface {
	Statuses() []watch.Status
}

type HistorySource interface {
	History() []notifier.HistoryItem
}

type Deps struct {
	Fetcher Fetcher
	Query   func() espn.Query
	State   *watch.State

	// Optional; /status degrades without them.
	Watch   StatusSource
	History HistorySource
	Store   storage.Store
	Bus     eventbus.Bus

	Log logx.Logger
	Now func() time.Time
}

type Set struct {
	d   Deps
	log logx.Logger
}

func New(d Deps) *Set {
	if d.Log.IsZero() {
		d.Log = logx.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Set{d: d, log: d.Log.With(logx.String("comp", "commands"))}
}

func (s *Set) Commands() []router.Command {
	return []router.Command{
		{
			Name:        "league_info",
			Aliases:     []string{"league", "info"},
			Description: "league name, season and teams",
			Usage:       "/league_info",
			Handle:      s.leagueInfo,
		},
		{
			Name:        "standings",
			Description: "current standings",
			Usage:       "/standings",
			Handle:      s.standings,
		},
		{
			Name:        "matchups",
			Aliases:     []string{"scores"},
			Description: "this week's matchups and scores",
			Usage:       "/matchups",
			Handle:      s.matchups,
		},
		{
			Name:        "team",
			Aliases:     []string{"team_info"},
			Description: "record and roster of one team",
			Usage:       "/team <name>",
			Handle:      s.team,
		},
		{
			Name:        "set_channel",
			Description: "send alerts to this chat or the given one",
			Usage:       "/set_channel [chat_id[:thread_id]]",
			Access:      router.AccessOwnerOnly,
			Timeout:     10 * time.Second,
			Handle:      s.setChannel,
		},
		{
			Name:        "activity",
			Description: "latest league transactions",
			Usage:       "/activity [count]",
			Handle:      s.activity,
		},
		{
			Name:        "status",
			Description: "alert channel and watcher health",
			Usage:       "/status",
			Timeout:     10 * time.Second,
			Handle:      s.status,
		},
	}
}

// snapshot fetches the league for a command. On failure it has already
// replied and returns the error for the request log.
func (s *Set) snapshot(ctx context.Context, req *router.Request) (league.Snapshot, error) {
	snap, err := s.d.Fetcher.Fetch(ctx, s.d.Query())
	if err == nil {
		return snap, nil
	}
	text := msgFetchFailed
	if errors.Is(err, espn.ErrNoLeagueID) {
		text = msgNoLeague
	}
	_ = req.Reply(ctx, text)
	return league.Snapshot{}, err
}
