package services

import (
	"context"
	"errors"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// CheckInResult reports the points the pair earned. Success is true on any
// accepted check-in; a repeated one returns the original award with
// Created=false.
type CheckInResult struct {
	Success      bool `json:"success"`
	Created      bool `json:"created"`
	PointsEarned int  `json:"points_earned"`
}

type ServiceCheckIn struct {
	store         interfaces.CheckInStore
	locker        interfaces.Locker
	serviceEvent  *ServiceEvent
	serviceConfig *ServiceConfig
}

func NewServiceCheckIn(store interfaces.CheckInStore, locker interfaces.Locker, serviceEvent *ServiceEvent, serviceConfig *ServiceConfig) (*ServiceCheckIn, error) {
	return &ServiceCheckIn{store, locker, serviceEvent, serviceConfig}, nil
}

// CheckIn records attendance once per (event, user). A prior check-in wins
// over everything, including the window check, so a repeated tap after the
// window closes is still the same no-op success it was the first time.
func (service *ServiceCheckIn) CheckIn(ctx context.Context, eventID int64, userID string, at time.Time) (*CheckInResult, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}
	if at.IsZero() {
		at = time.Now()
	}

	if existing, err := service.store.FindCheckIn(ctx, eventID, userID); err == nil {
		return &CheckInResult{Success: true, PointsEarned: existing.Points}, nil
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	event, err := service.serviceEvent.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	opens, closes := service.serviceEvent.CheckInWindow(ctx, event)
	if at.Before(opens) || at.After(closes) {
		return nil, errorx.Wrap(ErrCheckInOutsideWindow, errorx.Invalid)
	}

	release, err := service.locker.Acquire(ctx, LockKeyCheckIn(eventID, userID))
	if err != nil {
		return nil, errorx.Wrap(ErrCheckInLock, errorx.Invalid)
	}
	defer release()

	points, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHECKIN_POINTS, DEFAULT_CHECKIN_POINTS)

	checkin, created, err := service.store.InsertCheckIn(ctx, &models.CheckIn{
		EventID:     eventID,
		UserID:      userID,
		CheckedInAt: at,
		Points:      points,
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &CheckInResult{Success: true, Created: created, PointsEarned: checkin.Points}, nil
}
