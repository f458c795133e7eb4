package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Prize struct {
	bun.BaseModel `bun:"table:prize"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name" json:"name"`
	Description   string `bun:"description" json:"description"`
	Image         string `bun:"image" json:"image"`
	PointsCost    int    `bun:"points_cost" json:"points_required"`
	// Stock nil means unbounded.
	Stock     *int      `bun:"stock" json:"stock,omitempty"`
	CreatedAt time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type Redemption struct {
	bun.BaseModel `bun:"table:redemption"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	PrizeID       int64     `bun:"prize_id" json:"prize_id"`
	Points        int       `bun:"points" json:"points"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
