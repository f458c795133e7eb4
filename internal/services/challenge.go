package services

import (
	"context"
	"errors"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
)

type ServiceChallenge struct {
	store         interfaces.ChallengeStore
	locker        interfaces.Locker
	serviceConfig *ServiceConfig
}

func NewServiceChallenge(store interfaces.ChallengeStore, locker interfaces.Locker, serviceConfig *ServiceConfig) (*ServiceChallenge, error) {
	return &ServiceChallenge{store, locker, serviceConfig}, nil
}

// Submit files the proof in pending status. Points move only on review.
func (service *ServiceChallenge) Submit(ctx context.Context, userID, challengeID, mediaURL string) (*models.ChallengeSubmission, error) {
	if userID == "" {
		return nil, errorx.Wrap(errors.New("user_id is required"), errorx.Validation)
	}
	if challengeID == "" {
		return nil, errorx.Wrap(errors.New("challenge_id is required"), errorx.Validation)
	}
	if mediaURL == "" {
		return nil, errorx.Wrap(errors.New("media_url is required"), errorx.Validation)
	}

	submission := &models.ChallengeSubmission{
		ID:          uuid.New().String(),
		UserID:      userID,
		ChallengeID: challengeID,
		MediaURL:    mediaURL,
		Status:      models.SUBMISSION_STATUS_PENDING,
	}

	if err := service.store.InsertSubmission(ctx, submission); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return submission, nil
}

func (service *ServiceChallenge) Get(ctx context.Context, submissionID string) (*models.ChallengeSubmission, error) {
	submission, err := service.store.FindSubmissionByID(ctx, submissionID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return submission, nil
}

// Review moves pending -> accepted|rejected exactly once. Accepting awards
// points keyed on the submission id, so a replayed accept cannot pay twice;
// reviewing a terminal submission is refused outright.
func (service *ServiceChallenge) Review(ctx context.Context, submissionID, decision string) (*models.ChallengeSubmission, error) {
	if decision != models.SUBMISSION_STATUS_ACCEPTED && decision != models.SUBMISSION_STATUS_REJECTED {
		return nil, errorx.Wrap(errors.New("decision must be accepted or rejected"), errorx.Validation)
	}

	release, err := service.locker.Acquire(ctx, LockKeySubmissionReview(submissionID))
	if err != nil {
		return nil, errorx.Wrap(ErrReviewLock, errorx.Invalid)
	}
	defer release()

	points, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_CHALLENGE_POINTS, DEFAULT_CHALLENGE_POINTS)

	submission, err := service.store.ReviewSubmission(ctx, submissionID, decision, points)
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return nil, errorx.Wrap(err, errorx.NotExist)
	case errors.Is(err, interfaces.ErrSubmissionReviewed):
		return nil, errorx.Wrap(err, errorx.Invalid)
	case err != nil:
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return submission, nil
}
