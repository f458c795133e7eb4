package datastore

import (
	"context"
	"database/sql"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/uptrace/bun"
)

type PGConfigStore struct {
	db *bun.DB
}

func NewPGConfigStore(db *bun.DB) *PGConfigStore {
	return &PGConfigStore{db}
}

func (s *PGConfigStore) GetConfigByKey(ctx context.Context, key string) (*models.Config, error) {
	var config models.Config
	err := s.db.NewSelect().Model(&config).Where("key = ?", key).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func (s *PGConfigStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.NewInsert().Model(&models.Config{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}
