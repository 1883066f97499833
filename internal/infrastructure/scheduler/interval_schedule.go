package scheduler

import (
	"fmt"
	"math/rand"
	"time"
)

// IntervalSchedule fires a job at a fixed period. An optional jitter
// spreads each next run inside [Interval, Interval+Jitter), so warm
// passes from several worker replicas don't line up on the database
// at the same second.
type IntervalSchedule struct {
	Interval time.Duration
	Jitter   time.Duration
}

// NewIntervalSchedule creates a fixed-period schedule without jitter.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// NewJitteredIntervalSchedule creates a schedule whose period is
// stretched by up to jitter on every run.
func NewJitteredIntervalSchedule(interval, jitter time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval, Jitter: jitter}
}

// Next returns when the job should run after t.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	next := t.Add(s.Interval)
	if s.Jitter > 0 {
		next = next.Add(time.Duration(rand.Int63n(int64(s.Jitter))))
	}
	return next
}

// String describes the schedule for job listings.
func (s *IntervalSchedule) String() string {
	if s.Jitter > 0 {
		return fmt.Sprintf("@every %s (+%s jitter)", s.Interval, s.Jitter)
	}
	return fmt.Sprintf("@every %s", s.Interval)
}
