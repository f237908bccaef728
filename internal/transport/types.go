package transport

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

type UpdateKind string

const (
	UpdateMessage UpdateKind = "message"
)

type Update struct {
	Kind    UpdateKind
	Message *Message
}

type Message struct {
	ID           int
	ChatID       int64
	ThreadID     int // telegram forum topic thread id (0 if none)
	FromID       int64
	FromUsername string
	Text         string
	IsGroup      bool
}

// Target is where a reply to this message should go.
func (m *Message) Target() ChatTarget {
	return ChatTarget{ChatID: m.ChatID, ThreadID: m.ThreadID}
}

// ChatTarget is a destination chat, optionally narrowed to a forum thread.
type ChatTarget struct {
	ChatID   int64
	ThreadID int
}

func (t ChatTarget) IsZero() bool { return t.ChatID == 0 }

// String renders "chat" or "chat:thread"; ParseChatTarget reads it back.
func (t ChatTarget) String() string {
	if t.ThreadID == 0 {
		return strconv.FormatInt(t.ChatID, 10)
	}
	return strconv.FormatInt(t.ChatID, 10) + ":" + strconv.Itoa(t.ThreadID)
}

var ErrBadTarget = errors.New("chat target must be <chat_id> or <chat_id>:<thread_id>")

func ParseChatTarget(s string) (ChatTarget, error) {
	s = strings.TrimSpace(s)
	chat, thread, hasThread := strings.Cut(s, ":")
	id, err := strconv.ParseInt(strings.TrimSpace(chat), 10, 64)
	if err != nil || id == 0 {
		return ChatTarget{}, ErrBadTarget
	}
	t := ChatTarget{ChatID: id}
	if hasThread {
		th, err := strconv.Atoi(strings.TrimSpace(thread))
		if err != nil || th < 0 {
			return ChatTarget{}, ErrBadTarget
		}
		t.ThreadID = th
	}
	return t, nil
}

type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// HTML is the default options for every bot message.
func HTML() *SendOptions {
	return &SendOptions{ParseMode: "HTML", DisablePreview: true}
}

// Notification kinds. The notifier tags history, metrics and audit with them.
const (
	KindActivity  = "activity"
	KindTouchdown = "touchdown"
	KindFieldGoal = "field_goal"
	KindSystem    = "system"
)

type Notification struct {
	Kind     string
	Priority int // 0 low.. 10 high
	Target   ChatTarget
	Text     string
	Options  *SendOptions
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}

// BotCommand represents a single bot command menu entry.
type BotCommand struct {
	Command     string
	Description string
}

// CommandMenuUpdater is an optional interface that adapters can implement
// to update platform-specific bot command menus (e.g. Telegram /menu list).
type CommandMenuUpdater interface {
	UpdateMenuCommands(ctx context.Context, cmds []BotCommand) error
}
