package interfaces

import (
	"context"
	"errors"
	"time"

	"campuspulse/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

// Business-rule refusals shared by every store implementation. Services wrap
// them into transport categories at the boundary; stores return them as-is.
var (
	ErrNotFound           = errors.New("not found")
	ErrEventFull          = errors.New("event is at capacity")
	ErrAlreadyAwarded     = errors.New("reference already produced a ledger entry")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrOutOfStock         = errors.New("prize is out of stock")
	ErrSubmissionReviewed = errors.New("submission already reviewed")
)

type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	// FindEventByID returns the event with its active RSVP count filled.
	FindEventByID(ctx context.Context, id int64) (*models.Event, error)
	// ListEvents returns events ordered by start time ascending. category
	// "all" (or "") matches everything. Paging makes the sequence
	// restartable from any offset.
	ListEvents(ctx context.Context, category string, limit, offset int) ([]*models.Event, error)
	// AddRSVP atomically checks capacity, inserts (or revives) the RSVP and
	// awards points in one step. created is false when the user already had
	// an active RSVP; no points are awarded twice either way. count is the
	// active RSVP count after the call.
	AddRSVP(ctx context.Context, eventID int64, userID string, points int) (rsvp *models.RSVP, created bool, count int, err error)
	// CancelRSVP tombstones the RSVP; the row is never deleted.
	CancelRSVP(ctx context.Context, eventID int64, userID string) (count int, err error)
}

type CheckInStore interface {
	// InsertCheckIn is first-wins per (event, user): the first call inserts
	// the record and awards checkin.Points atomically, later calls return
	// the stored record with created=false.
	InsertCheckIn(ctx context.Context, checkin *models.CheckIn) (*models.CheckIn, bool, error)
	FindCheckIn(ctx context.Context, eventID int64, userID string) (*models.CheckIn, error)
}

type ChallengeStore interface {
	InsertSubmission(ctx context.Context, submission *models.ChallengeSubmission) error
	FindSubmissionByID(ctx context.Context, id string) (*models.ChallengeSubmission, error)
	// ReviewSubmission transitions pending -> status. The accepted
	// transition awards points in the same step. Terminal submissions fail
	// with ErrSubmissionReviewed.
	ReviewSubmission(ctx context.Context, id string, status string, points int) (*models.ChallengeSubmission, error)
}

type LedgerStore interface {
	// AppendEntry assigns the next sequence number and updates the balance
	// aggregate in the same atomic step. A duplicate (reason, ref) fails
	// with ErrAlreadyAwarded; a negative delta that would overdraw the
	// balance fails with ErrInsufficientPoints.
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
	Balance(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string, limit, offset int) ([]*models.LedgerEntry, error)
	// LastSeq is the snapshot marker: aggregations bounded by it observe a
	// consistent ledger prefix regardless of concurrent appends.
	LastSeq(ctx context.Context) (int64, error)
	// TotalsBy sums deltas up to maxSeq grouped by the scope key (user id,
	// organization or dorm), ordered by total descending then by the
	// sequence that reached the total ascending.
	TotalsBy(ctx context.Context, scope string, since *time.Time, maxSeq int64, limit int) ([]*models.PointsTotal, error)
	CountByUserReason(ctx context.Context, userID, reason string) (int, error)
}

type PrizeStore interface {
	CreatePrize(ctx context.Context, prize *models.Prize) error
	ListPrizes(ctx context.Context, limit, offset int) ([]*models.Prize, error)
	FindPrizeByID(ctx context.Context, id int64) (*models.Prize, error)
	// RedeemPrize atomically decrements finite stock and debits the ledger;
	// the check-then-debit pair never interleaves with another redemption
	// for the same user.
	RedeemPrize(ctx context.Context, userID string, prizeID int64) (*models.Redemption, error)
}

type ConfigStore interface {
	GetConfigByKey(ctx context.Context, key string) (*models.Config, error)
	SetConfig(ctx context.Context, key, value string) error
}

// Locker guards a named critical section. The redsync implementation spans
// processes; the local one is enough for a single node and for tests.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}
