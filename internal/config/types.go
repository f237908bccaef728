package config

// Config is the on-disk configuration. Durations are Go duration strings
// (e.g. "500ms", "10s", "5m") validated by ParseDurationField.
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	League    LeagueConfig    `json:"league"`
	Watch     WatchConfig     `json:"watch"`
	Logging   LoggingConfig   `json:"logging"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Ops       OpsConfig       `json:"ops"`

	// Notifier defaults to enabled when the section is omitted.
	Notifier *NotifierConfig `json:"notifier,omitempty"`
	Storage  *StorageConfig  `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token        string  `json:"token"`
	OwnerUserIDs []int64 `json:"owner_user_ids"`
	PollTimeout  string  `json:"poll_timeout"`
	// NotifyChat pre-binds the alert channel, "chat_id" or "chat_id:thread_id".
	NotifyChat string `json:"notify_chat,omitempty"`
	// CommandWorkers bounds concurrent command handlers (default NumCPU, min 2).
	CommandWorkers int `json:"command_workers,omitempty"`
}

// LeagueConfig identifies the ESPN league. A zero ID is allowed at startup;
// commands then reply that the league is not configured.
type LeagueConfig struct {
	ID   int64 `json:"id"`
	Year int   `json:"year"` // 0 means the current calendar year
	// Private league cookies (do not log).
	EspnS2        string `json:"espn_s2,omitempty"`
	SWID          string `json:"swid,omitempty"`
	BaseURL       string `json:"base_url,omitempty"`
	HTTPTimeout   string `json:"http_timeout,omitempty"`
	ActivityLimit int    `json:"activity_limit,omitempty"`
}

// WatchConfig controls the two pollers.
//
// Defaults: activity_interval "5m", score_interval "1m",
// touchdown_delta 6, field_goal_delta 3.
type WatchConfig struct {
	Enabled          *bool   `json:"enabled,omitempty"`
	ActivityInterval string  `json:"activity_interval,omitempty"`
	ScoreInterval    string  `json:"score_interval,omitempty"`
	TouchdownDelta   float64 `json:"touchdown_delta,omitempty"`
	FieldGoalDelta   float64 `json:"field_goal_delta,omitempty"`
	// PrimeScores records the first observed score of each team without
	// alerting.
	PrimeScores bool `json:"prime_scores,omitempty"`
	// MaxFailures is the consecutive failure count that marks a watcher
	// unhealthy on /healthz (default 3).
	MaxFailures int `json:"max_failures,omitempty"`
}

// WatchEnabled reports whether the pollers should run (default true).
func (w WatchConfig) WatchEnabled() bool { return w.Enabled == nil || *w.Enabled }

type NotifierConfig struct {
	Enabled         bool    `json:"enabled"`
	QueueSize       int     `json:"queue_size,omitempty"`
	RatePerSec      float64 `json:"rate_per_sec,omitempty"`
	Burst           int     `json:"burst,omitempty"`
	RetryMax        int     `json:"retry_max,omitempty"`
	RetryBase       string  `json:"retry_base,omitempty"`
	RetryMaxDelay   string  `json:"retry_max_delay,omitempty"`
	SendTimeout     string  `json:"send_timeout,omitempty"`
	DedupWindow     string  `json:"dedup_window,omitempty"`
	DedupMaxEntries int     `json:"dedup_max_entries,omitempty"`
	PersistDedup    bool    `json:"persist_dedup,omitempty"`
	HistorySize     int     `json:"history_size,omitempty"`
}

// StorageConfig controls the optional audit store.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./ffbot.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type SchedulerConfig struct {
	Timezone      string `json:"timezone,omitempty"`
	FirstRunDelay string `json:"first_run_delay,omitempty"`
	HistorySize   int    `json:"history_size,omitempty"`
}

// OpsConfig controls the optional HTTP server for /healthz, /metrics and
// pprof.
//
// Prefer binding to localhost. A non-loopback address requires a token.
type OpsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`  // default "127.0.0.1:9090"
	Token   string `json:"token,omitempty"` // bearer token (do not log)
	Pprof   bool   `json:"pprof,omitempty"`
}
