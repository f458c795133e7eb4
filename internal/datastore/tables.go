package datastore

import (
	"context"

	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTableEvent(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Event)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Event)(nil)).Index("index_event_start_time").IfNotExists().Column("start_time").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Event)(nil)).Index("index_event_category").IfNotExists().Column("category").Exec(ctx)
	return err
}

func CreateTableRSVP(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.RSVP)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.RSVP)(nil)).Index("index_rsvp_event_id_user_id").IfNotExists().Unique().Column("event_id", "user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.RSVP)(nil)).Index("index_rsvp_event_id").IfNotExists().Column("event_id").Exec(ctx)
	return err
}

func CreateTableCheckIn(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.CheckIn)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CheckIn)(nil)).Index("index_checkin_event_id_user_id").IfNotExists().Unique().Column("event_id", "user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.CheckIn)(nil)).Index("index_checkin_user_id").IfNotExists().Column("user_id").Exec(ctx)
	return err
}

func CreateTableChallengeSubmission(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.ChallengeSubmission)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ChallengeSubmission)(nil)).Index("index_challenge_submission_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.ChallengeSubmission)(nil)).Index("index_challenge_submission_status").IfNotExists().Column("status").Exec(ctx)
	return err
}

func CreateTableLedger(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.LedgerEntry)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_reason_ref").IfNotExists().Unique().Column("reason", "ref").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LedgerEntry)(nil)).Index("index_ledger_entry_created_at").IfNotExists().Column("created_at").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.UserBalance)(nil)).IfNotExists().Exec(ctx)
	return err
}

func CreateTablePrize(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Prize)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.Redemption)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Redemption)(nil)).Index("index_redemption_user_id").IfNotExists().Column("user_id").Exec(ctx)
	return err
}

func CreateTableConfig(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Config)(nil)).IfNotExists().Exec(ctx)
	return err
}

// CreateTables creates every table and index the engine needs. Safe to run
// repeatedly.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, fn := range []func(context.Context, *bun.DB) error{
		CreateTableUser,
		CreateTableEvent,
		CreateTableRSVP,
		CreateTableCheckIn,
		CreateTableChallengeSubmission,
		CreateTableLedger,
		CreateTablePrize,
		CreateTableConfig,
	} {
		if err := fn(ctx, db); err != nil {
			return err
		}
	}

	return nil
}
