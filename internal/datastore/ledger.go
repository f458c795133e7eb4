package datastore

import (
	"context"
	"database/sql"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGLedgerStore struct {
	db *bun.DB
}

func NewPGLedgerStore(db *bun.DB) *PGLedgerStore {
	return &PGLedgerStore{db}
}

// appendLedgerTx writes one ledger entry and folds its delta into the balance
// aggregate inside the caller's transaction. Every awarding store goes
// through here so the entry and the aggregate can never diverge.
func appendLedgerTx(ctx context.Context, tx bun.IDB, entry *models.LedgerEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	exists, err := tx.NewSelect().Model((*models.LedgerEntry)(nil)).
		Where("reason = ? AND ref = ?", entry.Reason, entry.Ref).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return interfaces.ErrAlreadyAwarded
	}

	if entry.Delta < 0 {
		var balance models.UserBalance
		err := tx.NewSelect().Model(&balance).
			Where("user_id = ?", entry.UserID).
			For("UPDATE").
			Scan(ctx)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if balance.Points+entry.Delta < 0 {
			return interfaces.ErrInsufficientPoints
		}
	}

	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return err
	}

	_, err = tx.NewInsert().Model(&models.UserBalance{
		UserID:    entry.UserID,
		Points:    entry.Delta,
		UpdatedAt: entry.CreatedAt,
	}).
		On("CONFLICT (user_id) DO UPDATE").
		Set("points = user_balance.points + EXCLUDED.points").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *PGLedgerStore) AppendEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return appendLedgerTx(ctx, tx, entry)
	})
}

func (s *PGLedgerStore) Balance(ctx context.Context, userID string) (int, error) {
	var balance models.UserBalance
	err := s.db.NewSelect().Model(&balance).Where("user_id = ?", userID).Scan(ctx)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return balance.Points, nil
}

func (s *PGLedgerStore) History(ctx context.Context, userID string, limit, offset int) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := s.db.NewSelect().Model(&entries).
		Where("user_id = ?", userID).
		OrderExpr("seq ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *PGLedgerStore) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.NewSelect().Model((*models.LedgerEntry)(nil)).
		ColumnExpr("COALESCE(MAX(seq), 0)").
		Scan(ctx, &seq)
	if err != nil {
		return 0, err
	}

	return seq, nil
}

func (s *PGLedgerStore) TotalsBy(ctx context.Context, scope string, since *time.Time, maxSeq int64, limit int) ([]*models.PointsTotal, error) {
	var totals []*models.PointsTotal

	q := s.db.NewSelect().
		TableExpr("ledger_entry AS l").
		ColumnExpr("SUM(l.delta) AS total").
		ColumnExpr("MAX(l.seq) AS last_seq").
		Where("l.seq <= ?", maxSeq)

	switch scope {
	case models.LEADERBOARD_SCOPE_ORGANIZATION:
		q = q.ColumnExpr("u.organization AS key").
			Join("JOIN app_user AS u ON u.id = l.user_id").
			Where("u.organization <> ''").
			GroupExpr("u.organization")
	case models.LEADERBOARD_SCOPE_DORM:
		q = q.ColumnExpr("u.dorm AS key").
			Join("JOIN app_user AS u ON u.id = l.user_id").
			Where("u.dorm <> ''").
			GroupExpr("u.dorm")
	default:
		q = q.ColumnExpr("l.user_id AS key").
			GroupExpr("l.user_id")
	}

	if since != nil {
		q = q.Where("l.created_at >= ?", since)
	}

	err := q.OrderExpr("total DESC").
		OrderExpr("last_seq ASC").
		Limit(limit).
		Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}

	return totals, nil
}

func (s *PGLedgerStore) CountByUserReason(ctx context.Context, userID, reason string) (int, error) {
	return s.db.NewSelect().Model((*models.LedgerEntry)(nil)).
		Where("user_id = ? AND reason = ?", userID, reason).
		Count(ctx)
}
