package logx

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fileLogger returns a root logger writing JSON to a temp file, and a func
// that closes the service and returns the decoded lines.
func fileLogger(t *testing.T, level string) (*Service, Logger, func() []map[string]any) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.log")
	svc, log := New(Config{Level: level, File: FileConfig{Enabled: true, Path: path}})
	read := func() []map[string]any {
		t.Helper()
		if err := svc.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open log: %v", err)
		}
		defer f.Close()
		var out []map[string]any
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var m map[string]any
			if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
				t.Fatalf("decode %q: %v", sc.Text(), err)
			}
			out = append(out, m)
		}
		return out
	}
	return svc, log, read
}

func TestLoggerWithFields(t *testing.T) {
	t.Parallel()
	_, root, read := fileLogger(t, "debug")
	log := root.With(String("comp", "watch"))
	log.Info("tick", Int("alerts", 2), Err(errors.New("boom")), Err(nil))

	lines := read()
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	m := lines[0]
	if m["comp"] != "watch" || m["alerts"] != float64(2) || m["err"] != "boom" {
		t.Fatalf("fields = %v", m)
	}
	if m["message"] != "tick" || m["level"] != "info" {
		t.Fatalf("message/level = %v/%v", m["message"], m["level"])
	}
	caller, _ := m["caller"].(string)
	if !strings.HasPrefix(caller, "logging_test.go:") {
		t.Fatalf("caller = %q, want this file", caller)
	}
}

func TestWithDoesNotShareFields(t *testing.T) {
	t.Parallel()
	_, root, read := fileLogger(t, "info")
	base := root.With(String("comp", "a"))
	left := base.With(String("side", "home"))
	right := base.With(String("side", "away"))
	left.Info("l")
	right.Info("r")

	lines := read()
	if len(lines) != 2 || lines[0]["side"] != "home" || lines[1]["side"] != "away" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestApplyChangesLevel(t *testing.T) {
	t.Parallel()
	svc, log, read := fileLogger(t, "warn")
	log.Debug("hidden")
	log.Warn("shown")

	path := filepath.Join(t.TempDir(), "after.log")
	svc.Apply(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	log.Debug("after apply")

	lines := read()
	if len(lines) != 1 || lines[0]["message"] != "shown" {
		t.Fatalf("before apply = %v", lines)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read new sink: %v", err)
	}
	if !strings.Contains(string(b), `"after apply"`) {
		t.Fatalf("new sink = %q", b)
	}
}

func TestZeroLoggerIsNoop(t *testing.T) {
	t.Parallel()
	var log Logger
	if !log.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	log.Info("nothing happens")
	log.With(String("k", "v")).Error("still nothing")
	if Nop().IsZero() {
		t.Fatal("Nop() should not be zero")
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "debug", " INFO ", "warning", "trace"} {
		if !ValidLevel(s) {
			t.Fatalf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("loud") {
		t.Fatal("ValidLevel(loud) = true")
	}
}
