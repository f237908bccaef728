package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ffbot/internal/transport/telegram/router"
	"ffbot/internal/watch"
	"ffbot/pkg/tgui"
)

const statusHistoryItems = 5

func (s *Set) status(ctx context.Context, req *router.Request) error {
	return req.Reply(ctx, s.statusText())
}

func (s *Set) statusText() string {
	now := s.d.Now()
	v := s.d.State.View()

	lines := []string{tgui.B("Status").String()}
	if v.HasChannel {
		lines = append(lines, "Alert channel: "+tgui.Code(v.Channel.String()).String())
	} else {
		lines = append(lines, "Alert channel: not set, use "+tgui.Code("/set_channel").String())
	}
	if v.BaselineSet {
		lines = append(lines, "Activity baseline: "+tgui.Code(v.Baseline.UTC().Format(time.RFC3339)).String())
	} else {
		lines = append(lines, "Activity baseline: "+tgui.I("waiting for first activity").String())
	}
	lines = append(lines, "Tracked teams: "+strconv.Itoa(len(v.Scores)))

	if s.d.Watch != nil {
		lines = append(lines, "", tgui.B("Watchers").String())
		for _, st := range s.d.Watch.Statuses() {
			lines = append(lines, "• "+watcherLine(st, now))
		}
	}

	if s.d.History != nil {
		h := s.d.History.History()
		if len(h) > statusHistoryItems {
			h = h[len(h)-statusHistoryItems:]
		}
		if len(h) > 0 {
			lines = append(lines, "", tgui.B("Recent alerts").String())
		}
		for i := len(h) - 1; i >= 0; i-- {
			it := h[i]
			res := "sent"
			if it.Error != "" {
				res = "failed: " + tgui.TruncRunes(it.Error, 80)
			}
			lines = append(lines, fmt.Sprintf("• %s %s %s",
				tgui.Code(it.At.UTC().Format("15:04:05")), tgui.Esc(it.Kind), tgui.Esc(res)))
		}
	}
	return strings.Join(lines, "\n")
}

func watcherLine(st watch.Status, now time.Time) string {
	name := tgui.B(st.Name).String()
	switch {
	case st.LastAttempt.IsZero():
		return name + " idle"
	case st.ConsecutiveFailures > 0:
		return fmt.Sprintf("%s failing (%d): %s", name, st.ConsecutiveFailures, tgui.Esc(tgui.TruncRunes(st.LastError, 120)))
	default:
		return fmt.Sprintf("%s ok, last success %s ago, %d alerts", name, now.Sub(st.LastSuccess).Round(time.Second), st.Alerts)
	}
}
