package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ffbot/internal/league"
	"ffbot/pkg/logx"
)

// Credentials are the two ESPN session cookies needed for private leagues.
type Credentials struct {
	EspnS2 string
	SWID   string
}

func (c *Credentials) empty() bool {
	return c == nil || (c.EspnS2 == "" && c.SWID == "")
}

// Query selects one league season.
type Query struct {
	LeagueID int64
	Year     int
	Creds    *Credentials
}

type Config struct {
	BaseURL       string
	HTTPClient    *http.Client
	Timeout       time.Duration
	ActivityLimit int
	Log           logx.Logger
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client reads league snapshots from the ESPN fantasy API. It never retries;
// the polling cadence is the retry.
type Client struct {
	baseURL       string
	httpClient    httpDoer
	activityLimit int
	now           func() time.Time
	log           logx.Logger

	players playerCache
}

func NewClient(cfg Config) *Client {
	log := cfg.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	limit := cfg.ActivityLimit
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return &Client{
		baseURL:       normalizeBaseURL(cfg.BaseURL),
		httpClient:    resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		activityLimit: limit,
		now:           time.Now,
		log:           log.With(logx.String("comp", "espn")),
	}
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func resolveHTTPClient(hc *http.Client, timeout time.Duration) httpDoer {
	if hc != nil {
		return hc
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Fetch reads settings, teams, rosters, the current matchups and recent
// transactions. Every failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context, q Query) (snap league.Snapshot, err error) {
	start := c.now()
	defer func() {
		if r := recover(); r != nil {
			err = fail("league", ErrMalformed, 0, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			c.log.Warn("fetch failed",
				logx.Int64("league_id", q.LeagueID),
				logx.Int("year", q.Year),
				logx.Err(err))
			return
		}
		c.log.Debug("fetch ok",
			logx.Int64("league_id", q.LeagueID),
			logx.Int("teams", len(snap.Teams)),
			logx.Int("matchups", len(snap.Matchups)),
			logx.Int("activity", len(snap.Activity)),
			logx.Duration("took", c.now().Sub(start)))
	}()

	if q.LeagueID <= 0 {
		return league.Snapshot{}, fail("league", ErrNoLeagueID, 0, nil)
	}
	if q.Year < minSupportedSeason {
		return league.Snapshot{}, fail("league", ErrUnsupportedSeason, 0, fmt.Errorf("year %d", q.Year))
	}

	var lr leagueResponse
	if err := c.getJSON(ctx, "league", c.leagueRequest(q), &lr); err != nil {
		return league.Snapshot{}, err
	}

	teams := mapTeams(lr.Teams)
	names := teamNames(teams)
	period := lr.Status.CurrentMatchupPeriod

	var cr communicationResponse
	if err := c.getJSON(ctx, "activity", c.activityRequest(q), &cr); err != nil {
		return league.Snapshot{}, err
	}

	players := playerNames(teams)
	c.resolvePlayers(ctx, q, cr.Topics, players)

	return league.Snapshot{
		LeagueID:      q.LeagueID,
		Name:          lr.Settings.Name,
		Year:          q.Year,
		CurrentPeriod: period,
		Teams:         teams,
		Matchups:      mapMatchups(lr.Schedule, period, names),
		Activity:      mapActivity(cr.Topics, names, players),
		FetchedAt:     c.now().UTC(),
	}, nil
}

func (c *Client) leagueURL(q Query) string {
	return c.baseURL + "/seasons/" + strconv.Itoa(q.Year) + "/segments/0/leagues/" + strconv.FormatInt(q.LeagueID, 10)
}

type requestBuilder func(ctx context.Context) (*http.Request, error)

func (c *Client) leagueRequest(q Query) requestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.leagueURL(q), nil)
		if err != nil {
			return nil, err
		}
		v := req.URL.Query()
		for _, view := range []string{"mSettings", "mTeam", "mRoster", "mMatchupScore", "mScoreboard", "mStatus"} {
			v.Add("view", view)
		}
		req.URL.RawQuery = v.Encode()
		setCredentials(req, q.Creds)
		return req, nil
	}
}

func (c *Client) activityRequest(q Query) requestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.leagueURL(q)+"/communication/", nil)
		if err != nil {
			return nil, err
		}
		v := req.URL.Query()
		v.Set("view", "kona_league_communication")
		req.URL.RawQuery = v.Encode()
		filter, err := activityFilter(c.activityLimit)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-fantasy-filter", filter)
		setCredentials(req, q.Creds)
		return req, nil
	}
}

type valueFilter[T any] struct {
	Value T `json:"value"`
}

type sortFilter struct {
	SortPriority int  `json:"sortPriority"`
	SortAsc      bool `json:"sortAsc"`
}

type topicsFilter struct {
	FilterType                  valueFilter[[]string] `json:"filterType"`
	Limit                       int                   `json:"limit"`
	LimitPerMessageSet          valueFilter[int]      `json:"limitPerMessageSet"`
	Offset                      int                   `json:"offset"`
	SortMessageDate             sortFilter            `json:"sortMessageDate"`
	SortFor                     sortFilter            `json:"sortFor"`
	FilterIncludeMessageTypeIDs valueFilter[[]int]    `json:"filterIncludeMessageTypeIds"`
}

func activityFilter(limit int) (string, error) {
	f := map[string]topicsFilter{
		"topics": {
			FilterType:                  valueFilter[[]string]{Value: []string{"ACTIVITY_TRANSACTIONS"}},
			Limit:                       limit,
			LimitPerMessageSet:          valueFilter[int]{Value: limit},
			SortMessageDate:             sortFilter{SortPriority: 1},
			SortFor:                     sortFilter{SortPriority: 2},
			FilterIncludeMessageTypeIDs: valueFilter[[]int]{Value: activityMessageTypes},
		},
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func setCredentials(req *http.Request, creds *Credentials) {
	if creds.empty() {
		return
	}
	if creds.EspnS2 != "" {
		req.AddCookie(&http.Cookie{Name: "espn_s2", Value: creds.EspnS2})
	}
	if creds.SWID != "" {
		req.AddCookie(&http.Cookie{Name: "SWID", Value: creds.SWID})
	}
}

func (c *Client) getJSON(ctx context.Context, op string, build requestBuilder, out any) error {
	req, err := build(ctx)
	if err != nil {
		return fail(op, ErrTransport, 0, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(op, ErrTransport, 0, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fail(op, ErrUnauthorized, resp.StatusCode, nil)
	case resp.StatusCode == http.StatusNotFound:
		return fail(op, ErrNotFound, resp.StatusCode, nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(op, ErrTransport, resp.StatusCode, errors.New(strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fail(op, ErrTransport, resp.StatusCode, ctx.Err())
		}
		return fail(op, ErrMalformed, resp.StatusCode, err)
	}
	return nil
}
