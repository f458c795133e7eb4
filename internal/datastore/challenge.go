package datastore

import (
	"context"
	"database/sql"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGChallengeStore struct {
	db *bun.DB
}

func NewPGChallengeStore(db *bun.DB) *PGChallengeStore {
	return &PGChallengeStore{db}
}

func (s *PGChallengeStore) InsertSubmission(ctx context.Context, submission *models.ChallengeSubmission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	_, err := s.db.NewInsert().Model(submission).Exec(ctx)
	return err
}

func (s *PGChallengeStore) FindSubmissionByID(ctx context.Context, id string) (*models.ChallengeSubmission, error) {
	var submission models.ChallengeSubmission
	err := s.db.NewSelect().Model(&submission).Where("id = ?", id).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

// ReviewSubmission moves pending -> accepted|rejected exactly once; the
// accepted transition carries its award in the same transaction.
func (s *PGChallengeStore) ReviewSubmission(ctx context.Context, id string, status string, points int) (*models.ChallengeSubmission, error) {
	var submission models.ChallengeSubmission

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&submission).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err == sql.ErrNoRows {
			return interfaces.ErrNotFound
		}
		if err != nil {
			return err
		}

		if submission.Terminal() {
			return interfaces.ErrSubmissionReviewed
		}

		now := time.Now()
		submission.Status = status
		submission.ReviewedAt = &now
		if _, err := tx.NewUpdate().Model(&submission).
			Set("status = ?", status).
			Set("reviewed_at = ?", now).
			WherePK().
			Exec(ctx); err != nil {
			return err
		}

		if status == models.SUBMISSION_STATUS_ACCEPTED {
			return appendLedgerTx(ctx, tx, &models.LedgerEntry{
				UserID: submission.UserID,
				Delta:  points,
				Reason: models.LEDGER_REASON_CHALLENGE,
				Ref:    models.RefChallenge(submission.ID),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &submission, nil
}
