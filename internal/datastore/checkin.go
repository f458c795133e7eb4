package datastore

import (
	"context"
	"database/sql"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGCheckInStore struct {
	db *bun.DB
}

func NewPGCheckInStore(db *bun.DB) *PGCheckInStore {
	return &PGCheckInStore{db}
}

// InsertCheckIn is first-wins: the unique (event, user) pair plus the
// transaction make a repeated tap return the original record instead of a
// second award.
func (s *PGCheckInStore) InsertCheckIn(ctx context.Context, checkin *models.CheckIn) (*models.CheckIn, bool, error) {
	var result *models.CheckIn
	var created bool

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing models.CheckIn
		err := tx.NewSelect().Model(&existing).
			Where("event_id = ? AND user_id = ?", checkin.EventID, checkin.UserID).
			For("UPDATE").
			Scan(ctx)
		if err == nil {
			result = &existing
			return nil
		}
		if err != sql.ErrNoRows {
			return err
		}

		if checkin.CheckedInAt.IsZero() {
			checkin.CheckedInAt = time.Now()
		}
		if _, err := tx.NewInsert().Model(checkin).Exec(ctx); err != nil {
			return err
		}

		if err := appendLedgerTx(ctx, tx, &models.LedgerEntry{
			UserID: checkin.UserID,
			Delta:  checkin.Points,
			Reason: models.LEDGER_REASON_CHECKIN,
			Ref:    models.RefCheckIn(checkin.EventID, checkin.UserID),
		}); err != nil {
			return err
		}

		result = checkin
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, created, nil
}

func (s *PGCheckInStore) FindCheckIn(ctx context.Context, eventID int64, userID string) (*models.CheckIn, error) {
	var checkin models.CheckIn
	err := s.db.NewSelect().Model(&checkin).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &checkin, nil
}
