package notifier

import "time"

// Config controls the alert pipeline.
type Config struct {
	Enabled         bool
	QueueSize       int
	RatePerSec      float64
	Burst           int
	RetryMax        int
	RetryBase       time.Duration
	RetryMaxDelay   time.Duration
	SendTimeout     time.Duration
	DedupWindow     time.Duration
	DedupMaxEntries int
	PersistDedup    bool
	HistorySize     int
}

type HistoryItem struct {
	At       time.Time
	Kind     string
	Text     string
	Attempts int
	Error    string
}

// Event is the payload of notifier events on the bus.
type Event struct {
	Kind     string    `json:"kind"`
	ChatID   int64     `json:"chat_id"`
	ThreadID int       `json:"thread_id,omitempty"`
	Key      string    `json:"key,omitempty"`
	At       time.Time `json:"at"`
	Error    string    `json:"error,omitempty"`
}
