package scheduler

import (
	"hash/fnv"
	"time"

	"github.com/robfig/cron/v3"
)

const maxFirstRunSpread = time.Second

// firstRunSchedule fires once at first, then follows base.
type firstRunSchedule struct {
	base  cron.Schedule
	first time.Time
}

func (s *firstRunSchedule) Next(t time.Time) time.Time {
	if t.Before(s.first) {
		return s.first
	}
	return s.base.Next(t)
}

// intervalSchedule runs after delay plus a small per-name offset, so jobs
// registered together do not hit upstream in the same instant.
func intervalSchedule(every, delay time.Duration, now time.Time, name string) cron.Schedule {
	offset := time.Duration(fnv64a(name) % uint64(maxFirstRunSpread))
	return &firstRunSchedule{base: cron.Every(every), first: now.Add(delay + offset)}
}

func fnv64a(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
