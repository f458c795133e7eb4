package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"campuspulse/internal/datastore/memstore"
	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"
	"campuspulse/internal/pkg/locking"
	"campuspulse/internal/services"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *memstore.Store) {
	t.Helper()

	store := memstore.New()
	locker := locking.NewLocalLocker()
	cache := caching.Noop{}

	injector := do.New()

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) { return locker, nil })
	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) { return cache, nil })

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(store, cache)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceEvent, error) {
		return services.NewServiceEvent(store, locker, cache, do.MustInvoke[*services.ServiceConfig](i))
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceCheckIn, error) {
		return services.NewServiceCheckIn(store, locker, do.MustInvoke[*services.ServiceEvent](i), do.MustInvoke[*services.ServiceConfig](i))
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceChallenge, error) {
		return services.NewServiceChallenge(store, locker, do.MustInvoke[*services.ServiceConfig](i))
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceLedger, error) {
		return services.NewServiceLedger(store)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceUser, error) {
		return services.NewServiceUser(store, store, cache)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceLeaderboard, error) {
		return services.NewServiceLeaderboard(store, store, cache, do.MustInvoke[*services.ServiceUser](i), do.MustInvoke[*services.ServiceConfig](i))
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServicePrize, error) {
		return services.NewServicePrize(store, store, locker, cache)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceBuddy, error) {
		return services.NewServiceBuddy("", "")
	})

	router, err := New(&Config{Container: injector, Origins: []string{"*"}})
	require.NoError(t, err)

	return router, store
}

func mustCreateEvent(t *testing.T, store *memstore.Store, title string, start time.Time, capacity int) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:       title,
		Category:    models.EVENT_CATEGORY_SPORTS,
		StartTime:   start,
		Location:    "Gersten Pavilion",
		MaxCapacity: capacity,
	}
	require.NoError(t, store.CreateEvent(context.Background(), event))
	return event
}

func doRequest(router http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListEvents(t *testing.T) {
	router, store := newTestRouter(t)
	mustCreateEvent(t, store, "Basketball vs USC", time.Now().Add(24*time.Hour), 100)

	rec := doRequest(router, http.MethodGet, "/api/events", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Basketball vs USC")
}

func TestGetEvent_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/events/999", "", "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestCreateEvent(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/events",
		`{"title":"Open Mic","type":"music","date":"2026-09-10T19:00:00Z","location":"Sunken Garden"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Open Mic")

	rec = doRequest(router, http.MethodPost, "/api/events", `{"location":"Nowhere"}`, "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestRSVP_HeaderIdentity(t *testing.T) {
	router, store := newTestRouter(t)
	event := mustCreateEvent(t, store, "Concert", time.Now().Add(24*time.Hour), 10)

	rec := doRequest(router, http.MethodPost, "/api/events/1/rsvp", "", "alex")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rsvp_count")

	// the caller was materialized as a user and awarded once
	balance, err := store.Balance(context.Background(), "alex")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	rec = doRequest(router, http.MethodPost, "/api/events/1/rsvp", "", "alex")
	assert.Equal(t, http.StatusOK, rec.Code)

	balance, err = store.Balance(context.Background(), "alex")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	stored, err := store.FindEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RSVPCount)
}

func TestRSVP_MissingUser(t *testing.T) {
	router, store := newTestRouter(t)
	mustCreateEvent(t, store, "Concert", time.Now().Add(24*time.Hour), 10)

	rec := doRequest(router, http.MethodPost, "/api/events/1/rsvp", "", "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestCancelRSVP(t *testing.T) {
	router, store := newTestRouter(t)
	event := mustCreateEvent(t, store, "Concert", time.Now().Add(24*time.Hour), 10)

	rec := doRequest(router, http.MethodPost, "/api/events/1/rsvp", "", "alex")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodDelete, "/api/events/1/rsvp", "", "alex")
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.FindEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RSVPCount)
}

func TestCheckIn(t *testing.T) {
	router, store := newTestRouter(t)
	mustCreateEvent(t, store, "Study Night", time.Now(), 50)

	rec := doRequest(router, http.MethodPost, "/api/checkin", `{"event_id":1,"user_id":"alex"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), "points_earned")

	balance, err := store.Balance(context.Background(), "alex")
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestCheckIn_OutsideWindow(t *testing.T) {
	router, store := newTestRouter(t)
	mustCreateEvent(t, store, "Study Night", time.Now().Add(48*time.Hour), 50)

	rec := doRequest(router, http.MethodPost, "/api/checkin", `{"event_id":1,"user_id":"alex"}`, "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestLeaderboard(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "alex", Name: "Alex"}))
	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 30, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a1",
	}))

	rec := doRequest(router, http.MethodGet, "/api/leaderboard", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snapshot")
	assert.Contains(t, rec.Body.String(), "Alex")

	rec = doRequest(router, http.MethodGet, "/api/leaderboard?scope=galaxy", "", "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestPrizes(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	prize := &models.Prize{Name: "LMU Hoodie", PointsCost: 500}
	require.NoError(t, store.CreatePrize(ctx, prize))

	rec := doRequest(router, http.MethodGet, "/api/prizes", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LMU Hoodie")
}

func TestRedeem(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 1250, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "grant-1",
	}))
	prize := &models.Prize{Name: "LMU Hoodie", PointsCost: 500}
	require.NoError(t, store.CreatePrize(ctx, prize))

	rec := doRequest(router, http.MethodPost, "/api/prizes/1/redeem", "", "alex")
	assert.Equal(t, http.StatusOK, rec.Code)

	balance, err := store.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 750, balance)

	// broke caller is refused
	rec = doRequest(router, http.MethodPost, "/api/prizes/1/redeem", "", "sarah")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

var submissionIDPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestChallengeFlow(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/challenges",
		`{"user_id":"alex","challenge_id":"spirit-week","media_url":"https://example.com/p.jpg"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pending")

	submissionID := submissionIDPattern.FindString(rec.Body.String())
	require.NotEmpty(t, submissionID)

	rec = doRequest(router, http.MethodGet, "/api/challenges/"+submissionID, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/challenges/"+submissionID+"/review", `{"decision":"accepted"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accepted")

	balance, err := store.Balance(context.Background(), "alex")
	require.NoError(t, err)
	assert.Equal(t, 50, balance)

	rec = doRequest(router, http.MethodPost, "/api/challenges/"+submissionID+"/review", `{"decision":"accepted"}`, "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestGenzBuddy(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/genz-buddy", `{"prompt":"hello bestie"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "response")

	rec = doRequest(router, http.MethodPost, "/api/genz-buddy", `{"prompt":""}`, "")
	assert.GreaterOrEqual(t, rec.Code, 400)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
