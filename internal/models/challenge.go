package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SUBMISSION_STATUS_PENDING  = "pending"
	SUBMISSION_STATUS_ACCEPTED = "accepted"
	SUBMISSION_STATUS_REJECTED = "rejected"
)

type ChallengeSubmission struct {
	bun.BaseModel `bun:"table:challenge_submission"`
	ID            string     `bun:"id,pk" json:"id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	ChallengeID   string     `bun:"challenge_id" json:"challenge_id"`
	MediaURL      string     `bun:"media_url" json:"media_url"`
	Status        string     `bun:"status" json:"status"`
	SubmittedAt   time.Time  `bun:"submitted_at" json:"submitted_at"`
	ReviewedAt    *time.Time `bun:"reviewed_at" json:"reviewed_at,omitempty"`
}

// Terminal reports whether the submission has been reviewed; terminal
// submissions never transition again.
func (s *ChallengeSubmission) Terminal() bool {
	return s.Status != SUBMISSION_STATUS_PENDING
}
