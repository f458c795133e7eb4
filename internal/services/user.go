package services

import (
	"context"
	"errors"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

type ServiceUser struct {
	store  interfaces.UserStore
	ledger interfaces.LedgerStore
	cache  caching.Cache
}

func NewServiceUser(store interfaces.UserStore, ledger interfaces.LedgerStore, cache caching.Cache) (*ServiceUser, error) {
	return &ServiceUser{store, ledger, cache}, nil
}

func (service *ServiceUser) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := service.store.FindUserByID(ctx, userID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return user, nil
}

// FindOrCreateUser trusts the caller-supplied identifier; identity is the
// concern of whatever sits in front of this service.
func (service *ServiceUser) FindOrCreateUser(ctx context.Context, userID, name string) (*models.User, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user id is required"), errorx.Validation)
	}

	user, err := service.store.FindUserByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if name == "" {
		name = userID
	}
	user = &models.User{ID: userID, Name: name}
	if err := service.store.UpsertUser(ctx, user); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return user, nil
}

// ListUsers returns summaries with the derived balance and badges filled in.
func (service *ServiceUser) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	limit, offset = clampPage(limit, offset)

	users, err := service.store.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	for _, user := range users {
		points, err := service.ledger.Balance(ctx, user.ID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		user.Points = points

		badges, err := service.Badges(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		user.Badges = badges
	}

	return users, nil
}

// Badges are derived from the ledger, never stored: the ledger is the source
// of truth and the badge set follows it automatically.
func (service *ServiceUser) Badges(ctx context.Context, userID string) ([]string, error) {
	callback := func() ([]string, error) {
		badges := []string{}

		checkins, err := service.ledger.CountByUserReason(ctx, userID, models.LEDGER_REASON_CHECKIN)
		if err != nil {
			return nil, err
		}
		if checkins >= 1 {
			badges = append(badges, "First Event")
		}
		if checkins >= 5 {
			badges = append(badges, "Event Regular")
		}

		rsvps, err := service.ledger.CountByUserReason(ctx, userID, models.LEDGER_REASON_RSVP)
		if err != nil {
			return nil, err
		}
		if rsvps >= 3 {
			badges = append(badges, "Social Butterfly")
		}

		challenges, err := service.ledger.CountByUserReason(ctx, userID, models.LEDGER_REASON_CHALLENGE)
		if err != nil {
			return nil, err
		}
		if challenges >= 1 {
			badges = append(badges, "Challenger")
		}

		balance, err := service.ledger.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		if balance >= 1000 {
			badges = append(badges, "Campus Legend")
		}

		return badges, nil
	}

	badges, err := caching.UseCache(ctx, service.cache, DBKeyUserBadges(userID), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return badges, nil
}
