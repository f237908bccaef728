package commands

import (
	"context"
	"strconv"
	"strings"

	"ffbot/internal/league"
	"ffbot/internal/transport/telegram/router"
	"ffbot/pkg/tgui"
)

const (
	defaultActivityCount = 5
	maxActivityCount     = 25
)

func (s *Set) leagueInfo(ctx context.Context, req *router.Request) error {
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return err
	}
	return req.Reply(ctx, league.FormatLeagueInfo(snap))
}

func (s *Set) standings(ctx context.Context, req *router.Request) error {
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return err
	}
	return req.Reply(ctx, league.FormatStandings(snap))
}

func (s *Set) matchups(ctx context.Context, req *router.Request) error {
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return err
	}
	return req.Reply(ctx, league.FormatMatchups(snap))
}

func (s *Set) team(ctx context.Context, req *router.Request) error {
	// unquoted multi-word names arrive as several args
	q := strings.TrimSpace(strings.Join(req.Args, " "))
	if q == "" {
		return req.Reply(ctx, "Usage: "+tgui.Code("/team <name>").String())
	}
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return err
	}
	t, ok := snap.FindTeam(q)
	if !ok {
		return req.Reply(ctx, tgui.Esc(league.TeamNotFound(q)).String())
	}
	return req.Reply(ctx, league.FormatTeam(t))
}

func (s *Set) activity(ctx context.Context, req *router.Request) error {
	n := defaultActivityCount
	if len(req.Args) > 0 {
		v, err := strconv.Atoi(req.Args[0])
		if err != nil || v <= 0 {
			return req.Reply(ctx, "Usage: "+tgui.Code("/activity [count]").String())
		}
		n = min(v, maxActivityCount)
	}
	snap, err := s.snapshot(ctx, req)
	if err != nil {
		return err
	}
	items := snap.Activity
	if len(items) > n {
		items = items[:n]
	}
	return req.Reply(ctx, league.FormatActivityList(items))
}
