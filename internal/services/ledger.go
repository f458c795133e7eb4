package services

import (
	"context"
	"errors"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

type ServiceLedger struct {
	store interfaces.LedgerStore
}

func NewServiceLedger(store interfaces.LedgerStore) (*ServiceLedger, error) {
	return &ServiceLedger{store}, nil
}

func (service *ServiceLedger) Balance(ctx context.Context, userID string) (int, error) {
	balance, err := service.store.Balance(ctx, userID)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.Service)
	}

	return balance, nil
}

func (service *ServiceLedger) History(ctx context.Context, userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	limit, offset = clampPage(limit, offset)

	entries, err := service.store.History(ctx, userID, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return entries, nil
}

// Adjust is the operator escape hatch: a manual correction entry. The ref
// must name the correction (ticket id or similar) so it stays exactly-once
// like every other award.
func (service *ServiceLedger) Adjust(ctx context.Context, userID string, delta int, ref string) (*models.LedgerEntry, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}
	if ref == "" {
		return nil, errorx.Wrap(errors.New("ref is required"), errorx.Validation)
	}
	if delta == 0 {
		return nil, errorx.Wrap(errors.New("delta must be non-zero"), errorx.Validation)
	}

	entry := &models.LedgerEntry{
		UserID: userID,
		Delta:  delta,
		Reason: models.LEDGER_REASON_ADJUSTMENT,
		Ref:    ref,
	}

	err := service.store.AppendEntry(ctx, entry)
	switch {
	case errors.Is(err, interfaces.ErrAlreadyAwarded):
		return nil, errorx.Wrap(err, errorx.Validation)
	case errors.Is(err, interfaces.ErrInsufficientPoints):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return entry, nil
}
