package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config selects a driver. An empty Driver or "none" disables storage.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Audit kinds.
const (
	KindAlert   = "alert"
	KindCommand = "command"
	KindChannel = "channel"
)

// AuditEntry is one line of the audit trail.
type AuditEntry struct {
	At            time.Time `json:"at"`
	Kind          string    `json:"kind"`
	Action        string    `json:"action"` // command name or alert kind
	ActorID       int64     `json:"actor_id,omitempty"`
	ActorUsername string    `json:"actor_username,omitempty"`
	ChatID        int64     `json:"chat_id"`
	ThreadID      int       `json:"thread_id,omitempty"`
	Target        string    `json:"target,omitempty"`
	OK            bool      `json:"ok"`
	Error         string    `json:"error,omitempty"`
	TookMS        int64     `json:"took_ms,omitempty"`
	MetaJSON      string    `json:"meta,omitempty"`
}
