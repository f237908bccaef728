package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()
	var r *Recorder
	r.RecordFetch("activity", time.Second, nil)
	r.RecordAlert("touchdown")
	r.RecordSend("touchdown", errors.New("x"))
	r.RecordCommand("standings", nil)
	r.SetWatcherFailures("scores", 2)
	if r.Handler() == nil {
		t.Fatal("nil recorder must still return a handler")
	}
}

func TestRecorderCounts(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.RecordFetch("scores", 10*time.Millisecond, nil)
	r.RecordFetch("scores", 10*time.Millisecond, errors.New("boom"))
	r.RecordAlert("field_goal")
	r.RecordAlert("field_goal")

	if got := testutil.ToFloat64(r.fetches.WithLabelValues("scores", ResultError)); got != 1 {
		t.Fatalf("error fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.alerts.WithLabelValues("field_goal")); got != 2 {
		t.Fatalf("field goal alerts = %v, want 2", got)
	}
}
