package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const (
	LEDGER_REASON_RSVP       = "rsvp"
	LEDGER_REASON_CHECKIN    = "checkin"
	LEDGER_REASON_CHALLENGE  = "challenge"
	LEDGER_REASON_REDEMPTION = "redemption"
	LEDGER_REASON_ADJUSTMENT = "adjustment"
)

// LedgerEntry is one immutable point change. Seq is the total order of the
// ledger; (Reason, Ref) is unique so an originating action can award at most
// once no matter how often it is retried.
type LedgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entry"`
	Seq           int64     `bun:"seq,pk,autoincrement" json:"seq"`
	UserID        string    `bun:"user_id" json:"user_id"`
	Delta         int       `bun:"delta" json:"delta"`
	Reason        string    `bun:"reason" json:"reason"`
	Ref           string    `bun:"ref" json:"ref"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// Ledger references are deterministic per originating action so a retried
// call can never produce a second award.
func RefRSVP(eventID int64, userID string) string {
	return fmt.Sprintf("rsvp:%d:%s", eventID, userID)
}

func RefCheckIn(eventID int64, userID string) string {
	return fmt.Sprintf("checkin:%d:%s", eventID, userID)
}

func RefChallenge(submissionID string) string {
	return fmt.Sprintf("challenge:%s", submissionID)
}

func RefRedemption(redemptionID int64) string {
	return fmt.Sprintf("redemption:%d", redemptionID)
}

// UserBalance is the running aggregate maintained in the same transaction as
// every ledger append.
type UserBalance struct {
	bun.BaseModel `bun:"table:user_balance"`
	UserID        string    `bun:"user_id,pk" json:"user_id"`
	Points        int       `bun:"points" json:"points"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

// PointsTotal is one aggregation row of a leaderboard query. Key is the user
// id, organization or dorm depending on scope; LastSeq is the sequence of the
// entry that brought the total to its final value, used as the tie-breaker.
type PointsTotal struct {
	Key     string `bun:"key" json:"key"`
	Total   int    `bun:"total" json:"total"`
	LastSeq int64  `bun:"last_seq" json:"last_seq"`
}
