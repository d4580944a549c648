package resultlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-arena/constants"
	"snake-arena/models"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleLog(sessionID string) models.ResultLog {
	return models.ResultLog{
		Type:      constants.RESULT_LOG_TYPE,
		SessionID: sessionID,
		Data: []models.ResultEntry{
			{Rank: 1, UserID: "bob", Score: 12, Params: models.ResultParams{
				UserID: "bob", UserName: "bob", LengthCount: 12, LengthRank: 1, Words: "bob　　　", KillCount: 0, KillRank: 2,
			}},
			{Rank: 2, UserID: "alice", Score: 8, Params: models.ResultParams{
				UserID: "alice", UserName: "alice", IsPremium: true, LengthCount: 8, LengthRank: 2, Words: "alice　", KillCount: 3, KillRank: 1, HaveJewel: true,
			}},
		},
	}
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSubmitGetRoundTrip(t *testing.T) {
	store := openTempStore(t)
	want := sampleLog("session-1")
	require.NoError(t, store.Submit(context.Background(), want))

	got, err := store.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSubmitDuplicateSession(t *testing.T) {
	store := openTempStore(t)
	require.NoError(t, store.Submit(context.Background(), sampleLog("session-1")))

	err := store.Submit(context.Background(), sampleLog("session-1"))
	assert.ErrorIs(t, err, ErrDuplicateSession)
}

func TestSubmitValidation(t *testing.T) {
	store := openTempStore(t)
	assert.Error(t, store.Submit(context.Background(), sampleLog("")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Submit(ctx, sampleLog("session-2")), context.Canceled)
}

func TestGetNotFound(t *testing.T) {
	store := openTempStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopenKeepsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	store, err := Open(path)
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, store.Submit(context.Background(), sampleLog("session-1")))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Len(t, got.Data, 2)
}
