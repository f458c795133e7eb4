package services

import (
	"context"
	"errors"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// RSVPResult is the authoritative outcome of an RSVP call; the client
// replaces its optimistic count with this.
type RSVPResult struct {
	Created   bool `json:"created"`
	RSVPCount int  `json:"rsvp_count"`
}

type ServiceEvent struct {
	store         interfaces.EventStore
	locker        interfaces.Locker
	cache         caching.Cache
	serviceConfig *ServiceConfig
}

func NewServiceEvent(store interfaces.EventStore, locker interfaces.Locker, cache caching.Cache, serviceConfig *ServiceConfig) (*ServiceEvent, error) {
	return &ServiceEvent{store, locker, cache, serviceConfig}, nil
}

func (service *ServiceEvent) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.Title == "" {
		return nil, errorx.Wrap(errors.New("title is required"), errorx.Validation)
	}
	if event.Location == "" {
		return nil, errorx.Wrap(errors.New("location is required"), errorx.Validation)
	}
	if event.StartTime.IsZero() {
		return nil, errorx.Wrap(errors.New("date is required"), errorx.Validation)
	}
	if event.Category == "" {
		event.Category = models.EVENT_CATEGORY_OTHER
	}
	if !models.ValidEventCategory(event.Category) {
		return nil, errorx.Wrap(errors.New("unknown event category"), errorx.Validation)
	}
	if event.MaxCapacity < 0 {
		return nil, errorx.Wrap(errors.New("capacity must be positive or unbounded"), errorx.Validation)
	}

	if err := service.store.CreateEvent(ctx, event); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return event, nil
}

func (service *ServiceEvent) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	event, err := service.store.FindEventByID(ctx, eventID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return event, nil
}

// ListEvents is ordered by start time ascending; paging makes the listing
// restartable from any offset. Cached briefly, RSVP counts tolerate the TTL.
func (service *ServiceEvent) ListEvents(ctx context.Context, category string, limit, offset int) ([]*models.Event, error) {
	if category == "" {
		category = models.EVENT_CATEGORY_ALL
	}
	if category != models.EVENT_CATEGORY_ALL && !models.ValidEventCategory(category) {
		return nil, errorx.Wrap(errors.New("unknown event category"), errorx.Validation)
	}
	limit, offset = clampPage(limit, offset)

	callback := func() ([]*models.Event, error) {
		return service.store.ListEvents(ctx, category, limit, offset)
	}

	events, err := caching.UseCache(ctx, service.cache, DBKeyEvents(category, limit, offset), CACHE_TTL_15_SECONDS, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return events, nil
}

// RSVP reserves a slot and awards points, both exactly once. The per-event
// lock plus the store transaction make the capacity check and the insert one
// atomic step; a duplicate call is a success-no-op with the current count.
func (service *ServiceEvent) RSVP(ctx context.Context, eventID int64, userID string) (*RSVPResult, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}

	release, err := service.locker.Acquire(ctx, LockKeyEventRSVP(eventID))
	if err != nil {
		return nil, errorx.Wrap(ErrRSVPLock, errorx.Invalid)
	}
	defer release()

	points, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_RSVP_POINTS, DEFAULT_RSVP_POINTS)

	_, created, count, err := service.store.AddRSVP(ctx, eventID, userID, points)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, interfaces.ErrEventFull):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &RSVPResult{Created: created, RSVPCount: count}, nil
}

func (service *ServiceEvent) CancelRSVP(ctx context.Context, eventID int64, userID string) (*RSVPResult, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}

	release, err := service.locker.Acquire(ctx, LockKeyEventRSVP(eventID))
	if err != nil {
		return nil, errorx.Wrap(ErrRSVPLock, errorx.Invalid)
	}
	defer release()

	count, err := service.store.CancelRSVP(ctx, eventID, userID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &RSVPResult{RSVPCount: count}, nil
}

// CheckInWindow is [start − grace, start + duration] per event.
func (service *ServiceEvent) CheckInWindow(ctx context.Context, event *models.Event) (time.Time, time.Time) {
	grace, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_GRACE_MINUTES, DEFAULT_CHECKIN_GRACE_MINUTES)
	window, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_WINDOW_MINUTES, DEFAULT_CHECKIN_WINDOW_MINUTES)

	opens := event.StartTime.Add(-time.Duration(grace) * time.Minute)
	closes := event.StartTime.Add(time.Duration(window) * time.Minute)
	return opens, closes
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DEFAULT_PAGE_LIMIT
	}
	if limit > MAX_PAGE_LIMIT {
		limit = MAX_PAGE_LIMIT
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
