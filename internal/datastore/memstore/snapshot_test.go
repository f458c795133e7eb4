package memstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"campuspulse/internal/interfaces"
	"campuspulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.bin")

	store := New()
	require.NoError(t, store.UpsertUser(ctx, &models.User{ID: "alex", Name: "Alex"}))
	event := &models.Event{Title: "Game", Category: models.EVENT_CATEGORY_SPORTS, StartTime: time.Now(), MaxCapacity: 5}
	require.NoError(t, store.CreateEvent(ctx, event))
	_, _, _, err := store.AddRSVP(ctx, event.ID, "alex", 10)
	require.NoError(t, err)

	require.NoError(t, store.SaveSnapshot(path))

	restored := New()
	require.NoError(t, restored.LoadSnapshot(path))

	balance, err := restored.Balance(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	stored, err := restored.FindEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RSVPCount)

	// uniqueness survives the restore
	err = restored.AppendEntry(ctx, &models.LedgerEntry{
		UserID: "alex", Delta: 10, Reason: models.LEDGER_REASON_RSVP, Ref: models.RefRSVP(event.ID, "alex"),
	})
	assert.ErrorIs(t, err, interfaces.ErrAlreadyAwarded)

	seq, err := restored.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	store := New()
	err := store.LoadSnapshot(filepath.Join(t.TempDir(), "absent.bin"))
	assert.NoError(t, err)
}
