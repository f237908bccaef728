package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"ffbot/pkg/logx"
)

func TestFirstRunFiresAfterDelay(t *testing.T) {
	t.Parallel()
	s := New(Config{FirstRunDelay: 10 * time.Millisecond}, logx.Nop())
	ran := make(chan struct{}, 1)
	if _, err := s.AddInterval("tick", time.Hour, 0, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatalf("AddInterval: %v", err)
	}
	s.Start(context.Background())
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("first run never fired")
	}
}

func TestFireSkipsWhileRunning(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	release := make(chan struct{})
	started := make(chan struct{})
	if _, err := s.AddInterval("slow", time.Minute, 0, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}); err != nil {
		t.Fatalf("AddInterval: %v", err)
	}
	d := s.defs["slow"]

	done := make(chan struct{})
	go func() {
		s.fire(context.Background(), d)
		close(done)
	}()
	<-started
	s.fire(context.Background(), d)
	close(release)
	<-done

	if d.runs.Load() != 1 || d.skipped.Load() != 1 {
		t.Fatalf("runs=%d skipped=%d, want 1/1", d.runs.Load(), d.skipped.Load())
	}
}

func TestFireRecordsFailuresAndPanics(t *testing.T) {
	t.Parallel()
	s := New(Config{HistorySize: 2}, logx.Nop())
	_, _ = s.AddInterval("bad", time.Minute, 0, func(ctx context.Context) error { return errors.New("nope") })
	_, _ = s.AddInterval("panics", time.Minute, 0, func(ctx context.Context) error { panic("boom") })

	s.fire(context.Background(), s.defs["bad"])
	s.fire(context.Background(), s.defs["panics"])
	s.fire(context.Background(), s.defs["bad"])

	snap := s.Snapshot()
	if len(snap.History) != 2 {
		t.Fatalf("history = %d, want capped at 2", len(snap.History))
	}
	if len(snap.Schedules) != 2 || snap.Schedules[0].Name != "bad" || snap.Schedules[0].Failed != 2 {
		t.Fatalf("schedules = %+v", snap.Schedules)
	}
	if snap.Schedules[1].Failed != 1 {
		t.Fatalf("panicking job failures = %d", snap.Schedules[1].Failed)
	}
}

func TestAddIntervalValidates(t *testing.T) {
	t.Parallel()
	s := New(Config{}, logx.Nop())
	if _, err := s.AddInterval("", time.Minute, 0, nil); err == nil {
		t.Fatal("empty name accepted")
	}
	if _, err := s.AddInterval("x", 0, 0, nil); !errors.Is(err, ErrBadInterval) {
		t.Fatalf("err = %v, want ErrBadInterval", err)
	}
	if s.Remove("x") {
		t.Fatal("unexpected removal")
	}
}
