package datastore

import (
	"context"
	"database/sql"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGPrizeStore struct {
	db *bun.DB
}

func NewPGPrizeStore(db *bun.DB) *PGPrizeStore {
	return &PGPrizeStore{db}
}

func (s *PGPrizeStore) CreatePrize(ctx context.Context, prize *models.Prize) error {
	if prize.CreatedAt.IsZero() {
		prize.CreatedAt = time.Now()
	}

	_, err := s.db.NewInsert().Model(prize).Exec(ctx)
	return err
}

func (s *PGPrizeStore) ListPrizes(ctx context.Context, limit, offset int) ([]*models.Prize, error) {
	var prizes []*models.Prize
	err := s.db.NewSelect().Model(&prizes).
		OrderExpr("points_cost ASC").
		OrderExpr("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return prizes, nil
}

func (s *PGPrizeStore) FindPrizeByID(ctx context.Context, id int64) (*models.Prize, error) {
	var prize models.Prize
	err := s.db.NewSelect().Model(&prize).Where("id = ?", id).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &prize, nil
}

// RedeemPrize locks the prize row, decrements finite stock and debits the
// ledger in one transaction. The debit goes through the shared balance guard,
// so a pair of racing redemptions that would jointly overdraw commits exactly
// once; the loser rolls back stock and all.
func (s *PGPrizeStore) RedeemPrize(ctx context.Context, userID string, prizeID int64) (*models.Redemption, error) {
	var redemption *models.Redemption

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var prize models.Prize
		err := tx.NewSelect().Model(&prize).Where("id = ?", prizeID).For("UPDATE").Scan(ctx)
		if err == sql.ErrNoRows {
			return interfaces.ErrNotFound
		}
		if err != nil {
			return err
		}

		if prize.Stock != nil {
			if *prize.Stock <= 0 {
				return interfaces.ErrOutOfStock
			}
			if _, err := tx.NewUpdate().Model(&prize).
				Set("stock = stock - 1").
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
		}

		redemption = &models.Redemption{
			UserID:    userID,
			PrizeID:   prizeID,
			Points:    prize.PointsCost,
			CreatedAt: time.Now(),
		}
		if _, err := tx.NewInsert().Model(redemption).Exec(ctx); err != nil {
			return err
		}

		return appendLedgerTx(ctx, tx, &models.LedgerEntry{
			UserID: userID,
			Delta:  -prize.PointsCost,
			Reason: models.LEDGER_REASON_REDEMPTION,
			Ref:    models.RefRedemption(redemption.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}
