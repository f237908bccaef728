package systemd

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func listen(t *testing.T) *net.UnixConn {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.sock")
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Skipf("unixgram unavailable: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	t.Setenv("NOTIFY_SOCKET", path)
	return conn
}

func read(t *testing.T, conn *net.UnixConn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(buf[:n])
}

func TestNoSocketIsNoop(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if sent, err := Ready(); sent || err != nil {
		t.Fatalf("Ready() = %v, %v", sent, err)
	}
	t.Setenv("WATCHDOG_USEC", "")
	if err := Watchdog(context.Background(), nil); err != nil {
		t.Fatalf("Watchdog: %v", err)
	}
}

func TestNotifyMessages(t *testing.T) {
	conn := listen(t)
	for _, tc := range []struct {
		fn   func() (bool, error)
		want string
	}{
		{Ready, "READY=1"},
		{func() (bool, error) { return Status("watching league 1") }, "STATUS=watching league 1"},
		{Stopping, "STOPPING=1"},
	} {
		if sent, err := tc.fn(); !sent || err != nil {
			t.Fatalf("notify %q = %v, %v", tc.want, sent, err)
		}
		if got := read(t, conn); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestWatchdogPingsWhileHealthy(t *testing.T) {
	conn := listen(t)
	t.Setenv("WATCHDOG_USEC", "40000")
	t.Setenv("WATCHDOG_PID", strconv.Itoa(os.Getpid()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watchdog(ctx, func() bool { return true }) }()

	if got := read(t, conn); got != "WATCHDOG=1" {
		t.Fatalf("got %q", got)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watchdog: %v", err)
	}
}
