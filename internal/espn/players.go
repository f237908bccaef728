package espn

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"ffbot/pkg/logx"
)

const (
	playerCacheTTL   = 6 * time.Hour
	playerRetryDelay = 5 * time.Minute
)

// playerCache holds the league-wide player names of one season. Dropped
// players are on no roster, so the activity feed needs this lookup.
type playerCache struct {
	mu    sync.Mutex
	year  int
	names map[int]string
	next  time.Time // refresh due
}

func (c *Client) playersRequest(q Query) requestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/seasons/"+strconv.Itoa(q.Year)+"/players", nil)
		if err != nil {
			return nil, err
		}
		v := req.URL.Query()
		v.Set("view", "players_wl")
		req.URL.RawQuery = v.Encode()
		req.Header.Set("x-fantasy-filter", `{"filterActive":{"value":true}}`)
		setCredentials(req, q.Creds)
		return req, nil
	}
}

// proPlayers returns the cached season player map, refreshing it when stale.
// A failed refresh keeps the previous map and is retried after a short delay.
func (c *Client) proPlayers(ctx context.Context, q Query) (map[int]string, error) {
	now := c.now()
	pc := &c.players
	pc.mu.Lock()
	if pc.year == q.Year && now.Before(pc.next) {
		names := pc.names
		pc.mu.Unlock()
		return names, nil
	}
	pc.mu.Unlock()

	var list []proPlayerWire
	err := c.getJSON(ctx, "players", c.playersRequest(q), &list)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.year != q.Year {
		pc.year, pc.names = q.Year, nil
	}
	if err != nil {
		pc.next = now.Add(playerRetryDelay)
		return pc.names, err
	}
	names := make(map[int]string, len(list))
	for _, p := range list {
		if p.FullName != "" {
			names[p.ID] = p.FullName
		}
	}
	pc.names, pc.next = names, now.Add(playerCacheTTL)
	return names, nil
}

// resolvePlayers adds league-wide names for activity targets missing from
// the rosters. Failure only degrades names to "player #<id>".
func (c *Client) resolvePlayers(ctx context.Context, q Query, topics []topicWire, known map[int]string) {
	if !hasUnknownPlayer(topics, known) {
		return
	}
	pro, err := c.proPlayers(ctx, q)
	if err != nil {
		c.log.Warn("player lookup failed", logx.Int("year", q.Year), logx.Err(err))
	}
	for id, n := range pro {
		if _, ok := known[id]; !ok {
			known[id] = n
		}
	}
}

func hasUnknownPlayer(topics []topicWire, known map[int]string) bool {
	for _, tp := range topics {
		for _, m := range tp.Messages {
			if _, ok := activityVerbs[m.MessageTypeID]; !ok {
				continue
			}
			if _, ok := known[m.TargetID]; !ok {
				return true
			}
		}
	}
	return false
}
