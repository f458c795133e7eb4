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

type ServiceLeaderboard struct {
	ledger        interfaces.LedgerStore
	users         interfaces.UserStore
	cache         caching.Cache
	serviceUser   *ServiceUser
	serviceConfig *ServiceConfig
}

func NewServiceLeaderboard(ledger interfaces.LedgerStore, users interfaces.UserStore, cache caching.Cache, serviceUser *ServiceUser, serviceConfig *ServiceConfig) (*ServiceLeaderboard, error) {
	return &ServiceLeaderboard{ledger, users, cache, serviceUser, serviceConfig}, nil
}

// Rank computes the ordered board for a scope and window. The snapshot
// marker is captured before aggregation, so appends racing the computation
// are wholly in or wholly out; equal totals order by who reached the total
// first, never by iteration order.
func (service *ServiceLeaderboard) Rank(ctx context.Context, scope, window string, limit int) (*models.LeaderboardResponse, error) {
	if scope == "" {
		scope = models.LEADERBOARD_SCOPE_INDIVIDUAL
	}
	if !models.ValidLeaderboardScope(scope) {
		return nil, errorx.Wrap(errors.New("unknown leaderboard scope"), errorx.Validation)
	}

	if window == "" {
		window = models.LEADERBOARD_WINDOW_ALL_TIME
	}
	if !models.ValidLeaderboardWindow(window) {
		return nil, errorx.Wrap(errors.New("unknown leaderboard window"), errorx.Validation)
	}

	if limit <= 0 {
		limit, _ = service.serviceConfig.GetIntConfig(ctx, CONFIG_LEADERBOARD_LIMIT, DEFAULT_LEADERBOARD_LIMIT)
	}

	callback := func() (*models.LeaderboardResponse, error) {
		return service.rank(ctx, scope, window, limit)
	}

	response, err := caching.UseCache(ctx, service.cache, DBKeyLeaderboard(scope, window, limit), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return response, nil
}

func (service *ServiceLeaderboard) rank(ctx context.Context, scope, window string, limit int) (*models.LeaderboardResponse, error) {
	maxSeq, err := service.ledger.LastSeq(ctx)
	if err != nil {
		return nil, err
	}

	since, err := service.periodStart(ctx, window)
	if err != nil {
		return nil, err
	}

	totals, err := service.ledger.TotalsBy(ctx, scope, since, maxSeq, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*models.LeaderboardItem, 0, len(totals))
	for i, total := range totals {
		item := &models.LeaderboardItem{
			ID:     total.Key,
			Name:   total.Key,
			Points: total.Total,
			Rank:   i + 1,
		}

		if scope == models.LEADERBOARD_SCOPE_INDIVIDUAL {
			user, err := service.users.FindUserByID(ctx, total.Key)
			if err == nil {
				item.Name = user.Name
				item.Avatar = user.Avatar
			}

			badges, err := service.serviceUser.Badges(ctx, total.Key)
			if err == nil {
				item.Badges = badges
			}
		}

		items = append(items, item)
	}

	return &models.LeaderboardResponse{
		Scope:       scope,
		Window:      window,
		Snapshot:    maxSeq,
		Leaderboard: items,
	}, nil
}

func (service *ServiceLeaderboard) periodStart(ctx context.Context, window string) (*time.Time, error) {
	if window != models.LEADERBOARD_WINDOW_CURRENT_PERIOD {
		return nil, nil
	}

	return service.serviceConfig.GetTimeConfig(ctx, CONFIG_PERIOD_START)
}
