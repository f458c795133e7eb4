package services

import (
	"context"
	"testing"

	"campuspulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallenge_SubmitThenAccept(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	submission, err := s.challenge.Submit(ctx, "alex", "spirit-week", "https://example.com/proof.jpg")
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_PENDING, submission.Status)
	assert.NotEmpty(t, submission.ID)

	// pending moves no points
	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	reviewed, err := s.challenge.Review(ctx, submission.ID, models.SUBMISSION_STATUS_ACCEPTED)
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_ACCEPTED, reviewed.Status)

	balance, err = s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}

func TestChallenge_RejectAwardsNothing(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	submission, err := s.challenge.Submit(ctx, "alex", "spirit-week", "https://example.com/proof.jpg")
	require.NoError(t, err)

	reviewed, err := s.challenge.Review(ctx, submission.ID, models.SUBMISSION_STATUS_REJECTED)
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_REJECTED, reviewed.Status)

	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestChallenge_ReviewIsTerminal(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	submission, err := s.challenge.Submit(ctx, "alex", "spirit-week", "https://example.com/proof.jpg")
	require.NoError(t, err)

	_, err = s.challenge.Review(ctx, submission.ID, models.SUBMISSION_STATUS_ACCEPTED)
	require.NoError(t, err)

	// replayed accept cannot pay twice
	_, err = s.challenge.Review(ctx, submission.ID, models.SUBMISSION_STATUS_ACCEPTED)
	assert.Error(t, err)

	// neither can a flip to rejected
	_, err = s.challenge.Review(ctx, submission.ID, models.SUBMISSION_STATUS_REJECTED)
	assert.Error(t, err)

	balance, err := s.ledger.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}

func TestChallenge_InvalidDecision(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	submission, err := s.challenge.Submit(ctx, "alex", "spirit-week", "https://example.com/proof.jpg")
	require.NoError(t, err)

	_, err = s.challenge.Review(ctx, submission.ID, "pending")
	assert.Error(t, err)

	_, err = s.challenge.Review(ctx, submission.ID, "approved")
	assert.Error(t, err)

	stored, err := s.challenge.Get(ctx, submission.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_PENDING, stored.Status)
}

func TestChallenge_SubmitValidation(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.challenge.Submit(ctx, "", "spirit-week", "https://example.com/p.jpg")
	assert.Error(t, err)

	_, err = s.challenge.Submit(ctx, "alex", "", "https://example.com/p.jpg")
	assert.Error(t, err)

	_, err = s.challenge.Submit(ctx, "alex", "spirit-week", "")
	assert.Error(t, err)
}

func TestChallenge_ReviewUnknownSubmission(t *testing.T) {
	s := newStack(t)

	_, err := s.challenge.Review(context.Background(), "missing", models.SUBMISSION_STATUS_ACCEPTED)
	assert.Error(t, err)
}
