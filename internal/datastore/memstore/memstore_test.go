package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEntry_DuplicateRef(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex",
		Delta:  25,
		Reason: models.LEDGER_REASON_CHECKIN,
		Ref:    models.RefCheckIn(1, "alex"),
	})
	require.NoError(t, err)

	err = store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex",
		Delta:  25,
		Reason: models.LEDGER_REASON_CHECKIN,
		Ref:    models.RefCheckIn(1, "alex"),
	})
	assert.ErrorIs(t, err, interfaces.ErrAlreadyAwarded)

	balance, err := store.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 25, balance)
}

func TestAppendEntry_SameRefDifferentReason(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_RSVP, Ref: "shared",
	})
	require.NoError(t, err)

	err = store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 25, Reason: models.LEDGER_REASON_CHECKIN, Ref: "shared",
	})
	assert.NoError(t, err)
}

func TestAppendEntry_OverdraftRefused(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 100, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "grant-1",
	})
	require.NoError(t, err)

	err = store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: -150, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "debit-1",
	})
	assert.ErrorIs(t, err, interfaces.ErrInsufficientPoints)

	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 100, balance)
}

func TestAppendEntry_ReadAfterWrite(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_RSVP, Ref: models.RefRSVP(1, "alex"),
	})
	require.NoError(t, err)

	balance, err := store.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	history, err := store.History(ctx, "alex", 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].Seq)
}

func TestHistory_SeqAscending(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i, ref := range []string{"a", "b", "c"} {
		err := store.AppendEntry(ctx, &models.LedgerEntry{
			UserID: "alex", Delta: i + 1, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: ref,
		})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "alex", 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].Seq, history[i-1].Seq)
	}

	paged, err := store.History(ctx, "alex", 2, 1)
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, history[1].Seq, paged[0].Seq)
}

func TestAddRSVP_CapacityRace(t *testing.T) {
	store := New()
	ctx := context.Background()

	event := &models.Event{Title: "Game", Category: models.EVENT_CATEGORY_SPORTS, StartTime: time.Now(), MaxCapacity: 2}
	require.NoError(t, store.CreateEvent(ctx, event))

	var wg sync.WaitGroup
	results := make([]error, 3)
	for i, userID := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, _, _, results[i] = store.AddRSVP(ctx, event.ID, userID, 10)
		}(i, userID)
	}
	wg.Wait()

	full := 0
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, interfaces.ErrEventFull)
			full++
		}
	}
	assert.Equal(t, 1, full)

	stored, err := store.FindEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RSVPCount)
}

func TestAddRSVP_DuplicateNoDoubleAward(t *testing.T) {
	store := New()
	ctx := context.Background()

	event := &models.Event{Title: "Game", Category: models.EVENT_CATEGORY_SPORTS, StartTime: time.Now(), MaxCapacity: 10}
	require.NoError(t, store.CreateEvent(ctx, event))

	_, created, count, err := store.AddRSVP(ctx, event.ID, "alex", 10)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, count)

	_, created, count, err = store.AddRSVP(ctx, event.ID, "alex", 10)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, count)

	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 10, balance)
}

func TestAddRSVP_ReviveKeepsOriginalAward(t *testing.T) {
	store := New()
	ctx := context.Background()

	event := &models.Event{Title: "Game", Category: models.EVENT_CATEGORY_SPORTS, StartTime: time.Now(), MaxCapacity: 10}
	require.NoError(t, store.CreateEvent(ctx, event))

	_, _, _, err := store.AddRSVP(ctx, event.ID, "alex", 10)
	require.NoError(t, err)

	count, err := store.CancelRSVP(ctx, event.ID, "alex")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, created, count, err := store.AddRSVP(ctx, event.ID, "alex", 10)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, count)

	// cancel does not claw back, revive does not re-award
	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 10, balance)
}

func TestInsertCheckIn_FirstWins(t *testing.T) {
	store := New()
	ctx := context.Background()

	first, created, err := store.InsertCheckIn(ctx, &models.CheckIn{EventID: 1, UserID: "alex", Points: 25})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 25, first.Points)

	second, created, err := store.InsertCheckIn(ctx, &models.CheckIn{EventID: 1, UserID: "alex", Points: 99})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 25, second.Points)

	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 25, balance)
}

func TestReviewSubmission_Terminal(t *testing.T) {
	store := New()
	ctx := context.Background()

	submission := &models.ChallengeSubmission{
		ID: "sub-1", UserID: "alex", ChallengeID: "spirit-week",
		MediaURL: "https://example.com/proof.jpg", Status: models.SUBMISSION_STATUS_PENDING,
	}
	require.NoError(t, store.InsertSubmission(ctx, submission))

	reviewed, err := store.ReviewSubmission(ctx, "sub-1", models.SUBMISSION_STATUS_ACCEPTED, 50)
	require.NoError(t, err)
	assert.Equal(t, models.SUBMISSION_STATUS_ACCEPTED, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = store.ReviewSubmission(ctx, "sub-1", models.SUBMISSION_STATUS_REJECTED, 50)
	assert.ErrorIs(t, err, interfaces.ErrSubmissionReviewed)

	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 50, balance)
}

func TestRedeemPrize_ConcurrentOverdraw(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 1000, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "grant-1",
	})
	require.NoError(t, err)

	prize := &models.Prize{Name: "Hoodie", PointsCost: 600}
	require.NoError(t, store.CreatePrize(ctx, prize))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.RedeemPrize(ctx, "alex", prize.ID)
		}(i)
	}
	wg.Wait()

	refused := 0
	for _, err := range results {
		if err != nil {
			assert.ErrorIs(t, err, interfaces.ErrInsufficientPoints)
			refused++
		}
	}
	assert.Equal(t, 1, refused)

	balance, _ := store.Balance(ctx, "alex")
	assert.Equal(t, 400, balance)
}

func TestRedeemPrize_StockDepletes(t *testing.T) {
	store := New()
	ctx := context.Background()

	err := store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 1000, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "grant-1",
	})
	require.NoError(t, err)

	stock := 1
	prize := &models.Prize{Name: "Gift Card", PointsCost: 100, Stock: &stock}
	require.NoError(t, store.CreatePrize(ctx, prize))

	_, err = store.RedeemPrize(ctx, "alex", prize.ID)
	require.NoError(t, err)

	_, err = store.RedeemPrize(ctx, "alex", prize.ID)
	assert.ErrorIs(t, err, interfaces.ErrOutOfStock)

	stored, err := store.FindPrizeByID(ctx, prize.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *stored.Stock)
}

func TestTotalsBy_TieBreakBySeq(t *testing.T) {
	store := New()
	ctx := context.Background()

	// alex reaches 30 before sarah does
	entries := []*models.LedgerEntry{
		{UserID: "alex", Delta: 30, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a1"},
		{UserID: "sarah", Delta: 10, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "s1"},
		{UserID: "sarah", Delta: 20, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "s2"},
	}
	for _, entry := range entries {
		require.NoError(t, store.AppendEntry(ctx, entry))
	}

	maxSeq, err := store.LastSeq(ctx)
	require.NoError(t, err)

	totals, err := store.TotalsBy(ctx, models.LEADERBOARD_SCOPE_INDIVIDUAL, nil, maxSeq, 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "alex", totals[0].Key)
	assert.Equal(t, "sarah", totals[1].Key)
	assert.Equal(t, 30, totals[0].Total)
	assert.Equal(t, 30, totals[1].Total)
}

func TestTotalsBy_SnapshotExcludesLaterAppends(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a1",
	}))

	maxSeq, err := store.LastSeq(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 100, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a2",
	}))

	totals, err := store.TotalsBy(ctx, models.LEADERBOARD_SCOPE_INDIVIDUAL, nil, maxSeq, 10)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 10, totals[0].Total)
}

func TestTotalsBy_GroupScopes(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "alex", Name: "Alex", Organization: "Chess Club", Dorm: "North"}))
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "sarah", Name: "Sarah", Organization: "Chess Club", Dorm: "South"}))
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "kim", Name: "Kim"}))

	for _, entry := range []*models.LedgerEntry{
		{UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a1"},
		{UserID: "sarah", Delta: 20, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "s1"},
		{UserID: "kim", Delta: 50, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "k1"},
	} {
		require.NoError(t, store.AppendEntry(ctx, entry))
	}

	maxSeq, _ := store.LastSeq(ctx)

	orgs, err := store.TotalsBy(ctx, models.LEADERBOARD_SCOPE_ORGANIZATION, nil, maxSeq, 10)
	require.NoError(t, err)
	// kim has no organization, so only one group appears
	require.Len(t, orgs, 1)
	assert.Equal(t, "Chess Club", orgs[0].Key)
	assert.Equal(t, 30, orgs[0].Total)

	dorms, err := store.TotalsBy(ctx, models.LEADERBOARD_SCOPE_DORM, nil, maxSeq, 10)
	require.NoError(t, err)
	require.Len(t, dorms, 2)
	assert.Equal(t, "South", dorms[0].Key)
}

func TestTotalsBy_SinceFiltersOldEntries(t *testing.T) {
	store := New()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a1", CreatedAt: old,
	}))
	require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 5, Reason: models.LEDGER_REASON_ADJUSTMENT, Ref: "a2",
	}))

	maxSeq, _ := store.LastSeq(ctx)
	since := time.Now().Add(-time.Hour)

	totals, err := store.TotalsBy(ctx, models.LEADERBOARD_SCOPE_INDIVIDUAL, &since, maxSeq, 10)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 5, totals[0].Total)
}

func TestListEvents_CategoryFilterAndOrder(t *testing.T) {
	store := New()
	ctx := context.Background()

	now := time.Now()
	for _, event := range []*models.Event{
		{Title: "Late", Category: models.EVENT_CATEGORY_MUSIC, StartTime: now.Add(3 * time.Hour)},
		{Title: "Early", Category: models.EVENT_CATEGORY_SPORTS, StartTime: now.Add(time.Hour)},
		{Title: "Mid", Category: models.EVENT_CATEGORY_SPORTS, StartTime: now.Add(2 * time.Hour)},
	} {
		require.NoError(t, store.CreateEvent(ctx, event))
	}

	all, err := store.ListEvents(ctx, models.EVENT_CATEGORY_ALL, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Early", all[0].Title)
	assert.Equal(t, "Mid", all[1].Title)

	sports, err := store.ListEvents(ctx, models.EVENT_CATEGORY_SPORTS, 10, 0)
	require.NoError(t, err)
	assert.Len(t, sports, 2)
}

func TestCountByUserReason(t *testing.T) {
	store := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendEntry(ctx, &models.LedgerEntry{
			UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_RSVP,
			Ref: models.RefRSVP(int64(i+1), "alex"),
		}))
	}

	n, err := store.CountByUserReason(ctx, "alex", models.LEDGER_REASON_RSVP)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.CountByUserReason(ctx, "alex", models.LEDGER_REASON_CHECKIN)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
