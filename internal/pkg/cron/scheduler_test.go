package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AddAndReschedule(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	s := NewScheduler(tokyo)
	s.now = func() time.Time { return time.Date(2025, 8, 4, 12, 0, 0, 0, tokyo) }
	require.NoError(t, s.AddJob("reminder", "0 18 * * *", func(context.Context) error { return nil }))

	// Not started yet: the next run still comes from the schedule.
	assert.WithinDuration(t, time.Date(2025, 8, 4, 18, 0, 0, 0, tokyo), s.Next("reminder"), 0)

	require.NoError(t, s.Reschedule("reminder", "30 17 * * *"))
	assert.WithinDuration(t, time.Date(2025, 8, 4, 17, 30, 0, 0, tokyo), s.Next("reminder"), 0)

	s.now = func() time.Time { return time.Date(2025, 8, 4, 20, 0, 0, 0, tokyo) }
	assert.WithinDuration(t, time.Date(2025, 8, 5, 17, 30, 0, 0, tokyo), s.Next("reminder"), 0)

	require.NoError(t, s.Reschedule("reminder", ""))
	assert.True(t, s.Next("reminder").IsZero())
}

func TestScheduler_RejectsBadSpecAndDuplicates(t *testing.T) {
	s := NewScheduler(time.UTC)
	assert.Error(t, s.AddJob("bad", "every day", func(context.Context) error { return nil }))

	require.NoError(t, s.AddJob("job", "", func(context.Context) error { return nil }))
	assert.Error(t, s.AddJob("job", "", func(context.Context) error { return nil }))
	assert.Error(t, s.Reschedule("missing", "* * * * *"))
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)
	runs := 0
	require.NoError(t, s.AddJob("job", "", func(context.Context) error {
		runs++
		return errors.New("boom")
	}))

	assert.EqualError(t, s.RunOnce(context.Background(), "job"), "boom")
	assert.Equal(t, 1, runs)
	assert.Error(t, s.RunOnce(context.Background(), "missing"))
}
