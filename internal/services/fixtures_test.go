package services

import (
	"context"
	"testing"
	"time"

	"campuspulse/internal/datastore/memstore"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"
	"campuspulse/internal/pkg/locking"

	"github.com/stretchr/testify/require"
)

// stack wires every service against the in-memory store with a local locker
// and no caching, so each test observes writes immediately.
type stack struct {
	store       *memstore.Store
	config      *ServiceConfig
	event       *ServiceEvent
	checkin     *ServiceCheckIn
	challenge   *ServiceChallenge
	ledger      *ServiceLedger
	user        *ServiceUser
	leaderboard *ServiceLeaderboard
	prize       *ServicePrize
}

func newStack(t *testing.T) *stack {
	t.Helper()

	store := memstore.New()
	locker := locking.NewLocalLocker()
	cache := caching.Noop{}

	config, err := NewServiceConfig(store, cache)
	require.NoError(t, err)

	event, err := NewServiceEvent(store, locker, cache, config)
	require.NoError(t, err)

	checkin, err := NewServiceCheckIn(store, locker, event, config)
	require.NoError(t, err)

	challenge, err := NewServiceChallenge(store, locker, config)
	require.NoError(t, err)

	ledger, err := NewServiceLedger(store)
	require.NoError(t, err)

	user, err := NewServiceUser(store, store, cache)
	require.NoError(t, err)

	leaderboard, err := NewServiceLeaderboard(store, store, cache, user, config)
	require.NoError(t, err)

	prize, err := NewServicePrize(store, store, locker, cache)
	require.NoError(t, err)

	return &stack{
		store:       store,
		config:      config,
		event:       event,
		checkin:     checkin,
		challenge:   challenge,
		ledger:      ledger,
		user:        user,
		leaderboard: leaderboard,
		prize:       prize,
	}
}

func (s *stack) mustCreateEvent(t *testing.T, title string, start time.Time, capacity int) *models.Event {
	t.Helper()

	event, err := s.event.CreateEvent(context.Background(), &models.Event{
		Title:       title,
		Category:    models.EVENT_CATEGORY_SPORTS,
		StartTime:   start,
		Location:    "Gersten Pavilion",
		MaxCapacity: capacity,
	})
	require.NoError(t, err)
	return event
}

func (s *stack) mustGrant(t *testing.T, userID string, points int, ref string) {
	t.Helper()

	_, err := s.ledger.Adjust(context.Background(), userID, points, ref)
	require.NoError(t, err)
}
