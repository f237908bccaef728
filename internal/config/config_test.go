package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

const sampleYAML = `
telegram:
  token: "123:abc"
  owner_user_ids: [42]
league:
  id: 555
  year: 2024
watch:
  activity_interval: 5m
  score_interval: 1m
  touchdown_delta: 6
  field_goal_delta: 3
storage:
  driver: sqlite
  path: ./ffbot.db
`

func TestParseYAMLWithEnvOverrides(t *testing.T) {
	t.Parallel()
	m := NewManager(writeFile(t, t.TempDir(), "config.yaml", sampleYAML))
	m.getenv = env(map[string]string{
		"LEAGUE_ID":      "777",
		"ESPN_S2":        "s2cookie",
		"SWID":           "{swid}",
		"NOTIFY_CHAT_ID": "-100:5",
		"OWNER_USER_IDS": "1, 2",
	})
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := LeagueConfig{ID: 777, Year: 2024, EspnS2: "s2cookie", SWID: "{swid}"}
	if diff := cmp.Diff(want, cfg.League); diff != "" {
		t.Fatalf("league (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{1, 2}, cfg.Telegram.OwnerUserIDs); diff != "" {
		t.Fatalf("owners (-want +got):\n%s", diff)
	}
	if cfg.Telegram.NotifyChat != "-100:5" || cfg.Storage.Driver != "sqlite" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if m.Get() != cfg {
		t.Fatal("Load did not commit")
	}
}

func TestParseRejectsUnknownAndTrailing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.yaml":  "telegram:\n  token: x\n  tokn: y\n",
		"trailing.json": `{"telegram":{"token":"x"}} {}`,
		"badtype.json":  `{"league":{"id":"abc"}}`,
	}
	for name, body := range cases {
		m := NewManager(writeFile(t, dir, name, body))
		m.getenv = env(nil)
		if _, err := m.Parse(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestMissingFileUsesEnvironment(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	m.getenv = env(map[string]string{"BOT_TOKEN": "1:x", "LEAGUE_ID": "9", "YEAR": "2023"})
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "1:x" || cfg.League.ID != 9 || cfg.League.Year != 2023 {
		t.Fatalf("cfg = %+v", cfg)
	}

	m.getenv = env(map[string]string{"LEAGUE_ID": "nine"})
	if _, err := m.Parse(); err == nil || !strings.Contains(err.Error(), "LEAGUE_ID") {
		t.Fatalf("bad LEAGUE_ID err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := func() *Config {
		return &Config{Telegram: TelegramConfig{Token: "t"}, League: LeagueConfig{ID: 1}}
	}
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"league id may be unset", func(c *Config) { c.League.ID = 0 }, ""},
		{"no token", func(c *Config) { c.Telegram.Token = "" }, "telegram.token"},
		{"old season", func(c *Config) { c.League.Year = 2017 }, "league.year"},
		{"bad interval", func(c *Config) { c.Watch.ScoreInterval = "soon" }, "watch.score_interval"},
		{"deltas inverted", func(c *Config) { c.Watch.TouchdownDelta, c.Watch.FieldGoalDelta = 3, 6 }, "field_goal_delta"},
		{"bad chat", func(c *Config) { c.Telegram.NotifyChat = "general" }, "telegram.notify_chat"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad driver", func(c *Config) { c.Storage = &StorageConfig{Driver: "redis"} }, "storage.driver"},
		{"ops public without token", func(c *Config) { c.Ops = OpsConfig{Enabled: true, Addr: "0.0.0.0:9090"} }, "ops.token"},
		{"ops loopback", func(c *Config) { c.Ops = OpsConfig{Enabled: true, Addr: "localhost:9090"} }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := base()
			tc.mutate(c)
			err := Validate(c)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	old := &Config{Telegram: TelegramConfig{Token: "a"}, League: LeagueConfig{ID: 1}}
	cur := &Config{Telegram: TelegramConfig{Token: "a", OwnerUserIDs: []int64{5}}, League: LeagueConfig{ID: 2},
		Logging: LoggingConfig{Level: "debug"}, Watch: WatchConfig{ScoreInterval: "30s"}}

	c := Summarize(old, cur)
	if diff := cmp.Diff([]string{"telegram", "league", "watch", "logging"}, c.Sections); diff != "" {
		t.Fatalf("sections (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"watch"}, c.NeedsRestart()); diff != "" {
		t.Fatalf("restart (-want +got):\n%s", diff)
	}
	if got := Summarize(cur, cur); len(got.Sections) != 0 {
		t.Fatalf("identical configs changed %v", got.Sections)
	}
}

func TestDurationOr(t *testing.T) {
	t.Parallel()
	if d := DurationOr("", time.Minute); d != time.Minute {
		t.Fatalf("empty = %v", d)
	}
	if d := DurationOr("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("90s = %v", d)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative duration accepted")
	}
}

func TestWatchPublishesValidReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"telegram":{"token":"t"},"logging":{"level":"info"}}`)
	m := NewManager(path)
	m.getenv = env(nil)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// invalid content is rejected and never published
	writeFile(t, dir, "config.json", `{"telegram":{"token":""}}`)
	time.Sleep(600 * time.Millisecond)
	writeFile(t, dir, "config.json", `{"telegram":{"token":"t"},"logging":{"level":"debug"}}`)

	select {
	case cfg := <-sub:
		if cfg.Logging.Level != "debug" {
			t.Fatalf("published level = %q", cfg.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload published")
	}
}
