package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:app_user"`
	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name" json:"name"`
	Email         string    `bun:"email" json:"email"`
	Organization  string    `bun:"organization" json:"organization,omitempty"`
	Dorm          string    `bun:"dorm" json:"dorm,omitempty"`
	Avatar        *string   `bun:"avatar" json:"avatar"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	Points int      `bun:"-" json:"points"`
	Badges []string `bun:"-" json:"badges"`
}
