package datastore

import (
	"context"
	"database/sql"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGUserStore struct {
	db *bun.DB
}

func NewPGUserStore(db *bun.DB) *PGUserStore {
	return &PGUserStore{db}
}

func (s *PGUserStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().Model(&user).Where("id = ?", id).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *PGUserStore) UpsertUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := s.db.NewInsert().Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("email = EXCLUDED.email").
		Set("organization = EXCLUDED.organization").
		Set("dorm = EXCLUDED.dorm").
		Set("avatar = EXCLUDED.avatar").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *PGUserStore) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := s.db.NewSelect().Model(&users).
		OrderExpr("id ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return users, nil
}
