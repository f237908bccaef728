package commands

import (
	"context"
	"time"

	"ffbot/internal/eventbus"
	"ffbot/internal/storage"
	"ffbot/internal/transport"
	"ffbot/internal/transport/telegram/router"
	"ffbot/pkg/logx"
	"ffbot/pkg/tgui"
)

// ChannelBound is the eventbus payload of TypeChannelBound.
type ChannelBound struct {
	Target   transport.ChatTarget
	Previous *transport.ChatTarget
	ByUserID int64
}

func (s *Set) setChannel(ctx context.Context, req *router.Request) error {
	to := req.Chat
	if len(req.Args) > 0 {
		t, err := transport.ParseChatTarget(req.Args[0])
		if err != nil {
			return req.Reply(ctx, "Usage: "+tgui.Code("/set_channel [chat_id[:thread_id]]").String())
		}
		to = t
	}

	prev, had := s.d.State.SetChannel(to)
	ev := ChannelBound{Target: to, ByUserID: req.FromID}
	if had {
		ev.Previous = &prev
	}
	s.log.Info("alert channel bound",
		logx.String("target", to.String()),
		logx.Bool("replaced", had),
		logx.Int64("by", req.FromID),
	)
	eventbus.Publish(s.d.Bus, eventbus.TypeChannelBound, ev)
	s.auditChannel(ctx, req, to)

	text := "Notifications will be sent to " + tgui.Code(to.String()).String() + "."
	if had && prev != to {
		text += "\nPreviously " + tgui.Code(prev.String()).String() + "."
	}
	return req.Reply(ctx, text)
}

func (s *Set) auditChannel(ctx context.Context, req *router.Request, to transport.ChatTarget) {
	if s.d.Store == nil {
		return
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	err := s.d.Store.AppendAudit(actx, storage.AuditEntry{
		At:            s.d.Now(),
		Kind:          storage.KindChannel,
		Action:        "set_channel",
		ActorID:       req.FromID,
		ActorUsername: req.FromUsername,
		ChatID:        req.Chat.ChatID,
		ThreadID:      req.Chat.ThreadID,
		Target:        to.String(),
		OK:            true,
	})
	if err != nil {
		s.log.Warn("channel audit failed", logx.Err(err))
	}
}
