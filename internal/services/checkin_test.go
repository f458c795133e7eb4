package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIn_WithinWindow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	result, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(10*time.Minute))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.Created)
	assert.Equal(t, 25, result.PointsEarned)

	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestCheckIn_GraceBeforeStart(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	result, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(-20*time.Minute))
	require.NoError(t, err)
	assert.True(t, result.Created)
}

func TestCheckIn_OutsideWindow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	// too early: before start - grace
	_, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(-45*time.Minute))
	assert.Error(t, err)

	// too late: after start + duration
	_, err = s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(4*time.Hour))
	assert.Error(t, err)

	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestCheckIn_RepeatIsNoOp(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	first, err := s.checkin.CheckIn(ctx, event.ID, "alex", start)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.False(t, second.Created)
	assert.Equal(t, first.PointsEarned, second.PointsEarned)

	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestCheckIn_RepeatAfterWindowCloses(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	_, err := s.checkin.CheckIn(ctx, event.ID, "alex", start)
	require.NoError(t, err)

	// the prior check-in wins even though the window is long over
	result, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(10*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, 25, result.PointsEarned)
}

func TestCheckIn_ConfiguredWindow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.store.SetConfig(ctx, CONFIG_CHECKIN_WINDOW_MINUTES, "60"))

	start := time.Now()
	event := s.mustCreateEvent(t, "Study Night", start, 50)

	_, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(90*time.Minute))
	assert.Error(t, err)

	result, err := s.checkin.CheckIn(ctx, event.ID, "alex", start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, result.Created)
}

func TestCheckIn_UnknownEvent(t *testing.T) {
	s := newStack(t)

	_, err := s.checkin.CheckIn(context.Background(), 999, "alex", time.Now())
	assert.Error(t, err)
}
