package ops

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ffbot/internal/metrics"
	"ffbot/internal/watch"
)

type statuses []watch.Status

func (s statuses) Statuses() []watch.Status { return s }

func get(t *testing.T, h http.Handler, path string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()
	b, _ := io.ReadAll(res.Body)
	return res, string(b)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		failures int
		code     int
		status   string
	}{
		{"healthy", 0, http.StatusOK, "ok"},
		{"below limit", 2, http.StatusOK, "ok"},
		{"failing", 3, http.StatusServiceUnavailable, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := New(Config{}, Deps{Health: statuses{
				{Name: "activity"},
				{Name: "scores", ConsecutiveFailures: tc.failures, LastError: "boom"},
			}})
			res, body := get(t, svc.Handler(), "/healthz", nil)
			if res.StatusCode != tc.code {
				t.Fatalf("code = %d, want %d", res.StatusCode, tc.code)
			}
			var hb healthBody
			if err := json.Unmarshal([]byte(body), &hb); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if hb.Status != tc.status || len(hb.Watchers) != 2 {
				t.Fatalf("body = %+v", hb)
			}
		})
	}
}

func TestMetricsAndPprofRoutes(t *testing.T) {
	t.Parallel()
	rec := metrics.NewRecorder()
	rec.RecordAlert("touchdown")

	h := New(Config{Pprof: true}, Deps{Metrics: rec}).Handler()
	res, body := get(t, h, "/metrics", nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(body, `ffbot_alerts_emitted_total{kind="touchdown"} 1`) {
		t.Fatalf("metrics code=%d body:\n%s", res.StatusCode, body)
	}
	if res, _ := get(t, h, "/debug/pprof/", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("pprof index code = %d", res.StatusCode)
	}

	noPprof := New(Config{}, Deps{Metrics: rec}).Handler()
	if res, _ := get(t, noPprof, "/debug/pprof/", nil); res.StatusCode != http.StatusNotFound {
		t.Fatalf("pprof should be off, code = %d", res.StatusCode)
	}
}

func TestTokenAuth(t *testing.T) {
	t.Parallel()
	h := New(Config{Token: "s3cret"}, Deps{}).Handler()
	if res, _ := get(t, h, "/healthz", nil); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token code = %d", res.StatusCode)
	}
	if res, _ := get(t, h, "/healthz", map[string]string{"Authorization": "Bearer s3cret"}); res.StatusCode != http.StatusOK {
		t.Fatalf("bearer code = %d", res.StatusCode)
	}
	if res, _ := get(t, h, "/healthz?token=s3cret", nil); res.StatusCode != http.StatusOK {
		t.Fatalf("query token code = %d", res.StatusCode)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	svc := New(Config{Addr: "127.0.0.1:0"}, Deps{})
	svc.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for svc.URL() == "" && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.URL() == "" {
		t.Fatal("server did not start")
	}
	res, err := http.Get(svc.URL() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("code = %d", res.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
