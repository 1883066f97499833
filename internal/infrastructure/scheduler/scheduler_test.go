package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its own runs" }

func (j *countingJob) Run(_ context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestScheduler_RegisterRejectsDuplicates(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	job := &countingJob{name: "warm"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))

	err := s.Register(job, NewIntervalSchedule(time.Minute))
	assert.ErrorIs(t, err, ErrJobAlreadyExists)
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	job := &countingJob{name: "warm"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "warm")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunNowRecordsFailure(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	job := &countingJob{name: "warm", err: errors.New("boom")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "warm")
	require.Error(t, err)
	assert.False(t, result.Success)

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.False(t, infos[0].LastResult.Success)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	require.NoError(t, s.Register(&countingJob{name: "warm"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestIntervalSchedule(t *testing.T) {
	sched := NewIntervalSchedule(10 * time.Minute)
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Minute), sched.Next(now))
	assert.Equal(t, "@every 10m0s", sched.String())
}

func TestIntervalSchedule_JitterStaysInBounds(t *testing.T) {
	sched := NewJitteredIntervalSchedule(10*time.Minute, time.Minute)
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		next := sched.Next(now)
		assert.False(t, next.Before(now.Add(10*time.Minute)))
		assert.True(t, next.Before(now.Add(11*time.Minute)))
	}

	assert.Equal(t, "@every 10m0s (+1m0s jitter)", sched.String())
}
