package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	EVENT_CATEGORY_SPORTS   = "sports"
	EVENT_CATEGORY_MUSIC    = "music"
	EVENT_CATEGORY_ACADEMIC = "academic"
	EVENT_CATEGORY_SOCIAL   = "social"
	EVENT_CATEGORY_CULTURAL = "cultural"
	EVENT_CATEGORY_OTHER    = "other"

	// EVENT_CATEGORY_ALL is only valid as a list filter, never on an event.
	EVENT_CATEGORY_ALL = "all"
)

func ValidEventCategory(category string) bool {
	switch category {
	case EVENT_CATEGORY_SPORTS, EVENT_CATEGORY_MUSIC, EVENT_CATEGORY_ACADEMIC,
		EVENT_CATEGORY_SOCIAL, EVENT_CATEGORY_CULTURAL, EVENT_CATEGORY_OTHER:
		return true
	}
	return false
}

type Event struct {
	bun.BaseModel `bun:"table:event"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Title         string    `bun:"title" json:"title"`
	Description   string    `bun:"description" json:"description"`
	Category      string    `bun:"category" json:"type"`
	StartTime     time.Time `bun:"start_time" json:"date"`
	Location      string    `bun:"location" json:"location"`
	Image         string    `bun:"image" json:"image"`
	// MaxCapacity 0 means unbounded.
	MaxCapacity int       `bun:"max_capacity" json:"max_capacity"`
	CreatedAt   time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	RSVPCount int `bun:"-" json:"rsvp_count"`
}

// Unbounded reports whether the event has no RSVP cap.
func (e *Event) Unbounded() bool {
	return e.MaxCapacity <= 0
}

type RSVP struct {
	bun.BaseModel `bun:"table:rsvp"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	EventID       int64      `bun:"event_id" json:"event_id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
	CancelledAt   *time.Time `bun:"cancelled_at" json:"cancelled_at,omitempty"`
}

type CheckIn struct {
	bun.BaseModel `bun:"table:checkin"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	EventID       int64     `bun:"event_id" json:"event_id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	CheckedInAt   time.Time `bun:"checked_in_at" json:"checked_in_at"`
	Points        int       `bun:"points" json:"points"`
}
