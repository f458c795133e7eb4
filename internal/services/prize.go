package services

import (
	"context"
	"errors"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"
	"campuspulse/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

// RedemptionResult pairs the redemption with the balance after the debit.
type RedemptionResult struct {
	Redemption *models.Redemption `json:"redemption"`
	Balance    int                `json:"balance"`
}

type ServicePrize struct {
	store  interfaces.PrizeStore
	ledger interfaces.LedgerStore
	locker interfaces.Locker
	cache  caching.Cache
}

func NewServicePrize(store interfaces.PrizeStore, ledger interfaces.LedgerStore, locker interfaces.Locker, cache caching.Cache) (*ServicePrize, error) {
	return &ServicePrize{store, ledger, locker, cache}, nil
}

func (service *ServicePrize) ListPrizes(ctx context.Context, limit, offset int) ([]*models.Prize, error) {
	limit, offset = clampPage(limit, offset)

	callback := func() ([]*models.Prize, error) {
		return service.store.ListPrizes(ctx, limit, offset)
	}

	prizes, err := caching.UseCache(ctx, service.cache, DBKeyPrizes(limit, offset), CACHE_TTL_1_MIN, callback)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return prizes, nil
}

// Redeem debits the ledger and decrements stock as one step under a per-user
// lock: two requests that would jointly overdraw resolve to one success and
// one refusal, never a negative balance.
func (service *ServicePrize) Redeem(ctx context.Context, userID string, prizeID int64) (*RedemptionResult, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}

	release, err := service.locker.Acquire(ctx, LockKeyUserRedeem(userID))
	if err != nil {
		return nil, errorx.Wrap(ErrRedeemLock, errorx.Invalid)
	}
	defer release()

	redemption, err := service.store.RedeemPrize(ctx, userID, prizeID)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, interfaces.ErrOutOfStock):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case errors.Is(err, interfaces.ErrInsufficientPoints):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	balance, err := service.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &RedemptionResult{Redemption: redemption, Balance: balance}, nil
}
