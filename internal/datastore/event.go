package datastore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGEventStore struct {
	db *bun.DB
}

func NewPGEventStore(db *bun.DB) *PGEventStore {
	return &PGEventStore{db}
}

func (s *PGEventStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.db.NewInsert().Model(event).Exec(ctx)
	return err
}

func activeRSVPCount(ctx context.Context, tx bun.IDB, eventID int64) (int, error) {
	return tx.NewSelect().Model((*models.RSVP)(nil)).
		Where("event_id = ?", eventID).
		Where("cancelled_at IS NULL").
		Count(ctx)
}

func (s *PGEventStore) FindEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := s.db.NewSelect().Model(&event).Where("id = ?", id).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	count, err := activeRSVPCount(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	event.RSVPCount = count

	return &event, nil
}

func (s *PGEventStore) ListEvents(ctx context.Context, category string, limit, offset int) ([]*models.Event, error) {
	var events []*models.Event

	q := s.db.NewSelect().Model(&events)
	if category != "" && category != models.EVENT_CATEGORY_ALL {
		q = q.Where("category = ?", category)
	}

	err := q.OrderExpr("start_time ASC").
		OrderExpr("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]int64, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	var rows []struct {
		EventID int64 `bun:"event_id"`
		Count   int   `bun:"count"`
	}
	err = s.db.NewSelect().Model((*models.RSVP)(nil)).
		ColumnExpr("event_id").
		ColumnExpr("count(*) AS count").
		Where("event_id IN (?)", bun.In(ids)).
		Where("cancelled_at IS NULL").
		Group("event_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.EventID] = row.Count
	}
	for _, event := range events {
		event.RSVPCount = counts[event.ID]
	}

	return events, nil
}

// AddRSVP locks the event row so the capacity check and the insert are one
// step: of two concurrent calls racing for the last slot, exactly one
// commits. The point award rides in the same transaction, keyed by the
// deterministic rsvp reference, so a retried call cannot award twice.
func (s *PGEventStore) AddRSVP(ctx context.Context, eventID int64, userID string, points int) (*models.RSVP, bool, int, error) {
	var rsvp *models.RSVP
	var created bool
	var count int

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		err := tx.NewSelect().Model(&event).Where("id = ?", eventID).For("UPDATE").Scan(ctx)
		if err == sql.ErrNoRows {
			return interfaces.ErrNotFound
		}
		if err != nil {
			return err
		}

		var existing models.RSVP
		err = tx.NewSelect().Model(&existing).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Scan(ctx)

		switch {
		case err == sql.ErrNoRows:
			n, err := activeRSVPCount(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if !event.Unbounded() && n >= event.MaxCapacity {
				return interfaces.ErrEventFull
			}

			rsvp = &models.RSVP{EventID: eventID, UserID: userID, CreatedAt: time.Now()}
			if _, err := tx.NewInsert().Model(rsvp).Exec(ctx); err != nil {
				return err
			}
			created = true

		case err != nil:
			return err

		case existing.CancelledAt != nil:
			// Revive the tombstone; the slot was given back on cancel so
			// capacity applies again.
			n, err := activeRSVPCount(ctx, tx, eventID)
			if err != nil {
				return err
			}
			if !event.Unbounded() && n >= event.MaxCapacity {
				return interfaces.ErrEventFull
			}

			existing.CancelledAt = nil
			if _, err := tx.NewUpdate().Model(&existing).
				Set("cancelled_at = NULL").
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
			rsvp = &existing
			created = true

		default:
			rsvp = &existing
		}

		if created {
			err := appendLedgerTx(ctx, tx, &models.LedgerEntry{
				UserID: userID,
				Delta:  points,
				Reason: models.LEDGER_REASON_RSVP,
				Ref:    models.RefRSVP(eventID, userID),
			})
			// A revived RSVP was already awarded; keeping the original
			// entry is the idempotency contract, not a failure.
			if err != nil && !errors.Is(err, interfaces.ErrAlreadyAwarded) {
				return err
			}
		}

		count, err = activeRSVPCount(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, false, 0, err
	}

	return rsvp, created, count, nil
}

func (s *PGEventStore) CancelRSVP(ctx context.Context, eventID int64, userID string) (int, error) {
	var count int

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing models.RSVP
		err := tx.NewSelect().Model(&existing).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Scan(ctx)
		if err == sql.ErrNoRows {
			return interfaces.ErrNotFound
		}
		if err != nil {
			return err
		}

		if existing.CancelledAt == nil {
			now := time.Now()
			existing.CancelledAt = &now
			if _, err := tx.NewUpdate().Model(&existing).
				Set("cancelled_at = ?", now).
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
		}

		count, err = activeRSVPCount(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
