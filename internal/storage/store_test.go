package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ffbot/pkg/logx"
)

func openDriver(t *testing.T, driver string) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffbot.db")
	st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s): %v", driver, err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, d := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: d}, logx.Logger{})
		if st != nil || err != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", d, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver accepted")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("file driver without path accepted")
	}
}

func TestAuditRoundTrip(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st, _ := openDriver(t, driver)
			ctx := context.Background()
			base := time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)

			entries := []AuditEntry{
				{At: base, Kind: KindAlert, Action: "touchdown", ChatID: -100, OK: true},
				{At: base.Add(time.Minute), Kind: KindCommand, Action: "standings", ActorID: 7, ChatID: 5, OK: true, TookMS: 12},
				{At: base.Add(2 * time.Minute), Kind: KindAlert, Action: "activity", ChatID: -100, ThreadID: 3, Error: "send failed"},
			}
			for _, e := range entries {
				if err := st.AppendAudit(ctx, e); err != nil {
					t.Fatalf("AppendAudit: %v", err)
				}
			}

			got, err := st.RecentAudit(ctx, KindAlert, 5)
			if err != nil {
				t.Fatalf("RecentAudit: %v", err)
			}
			want := []AuditEntry{entries[2], entries[0]}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("alerts (-want +got):\n%s", diff)
			}

			all, err := st.RecentAudit(ctx, "", 1)
			if err != nil {
				t.Fatalf("RecentAudit all: %v", err)
			}
			if len(all) != 1 || all[0].Action != "activity" {
				t.Fatalf("latest = %+v", all)
			}
		})
	}
}

func TestDedupSurvivesReopen(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "ffbot.db")
			ctx := context.Background()
			until := time.Now().Add(time.Hour).Truncate(time.Millisecond)

			st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if err := st.PutDedup(ctx, "k1", until); err != nil {
				t.Fatalf("PutDedup: %v", err)
			}
			if err := st.PutDedup(ctx, "old", time.Now().Add(-time.Hour)); err != nil {
				t.Fatalf("PutDedup old: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			st, err = Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer st.Close()
			got, ok, err := st.GetDedup(ctx, "k1")
			if err != nil || !ok || !got.Equal(until) {
				t.Fatalf("GetDedup = %v %v %v, want %v", got, ok, err, until)
			}
			if _, ok, _ := st.GetDedup(ctx, "missing"); ok {
				t.Fatal("missing key reported present")
			}
		})
	}
}
