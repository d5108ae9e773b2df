package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPlayers(t *testing.T, db *DB, names ...string) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		ids[i] = uuid.New()
		require.NoError(t, db.Store().Players.Create(context.Background(), &models.Player{ID: ids[i], Name: name}))
	}
	return ids
}

func TestWithinTxRestoresStateOnError(t *testing.T) {
	db := New()
	ids := seedPlayers(t, db, "Alice")
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithinTx(ctx, func(store repositories.Store) error {
		require.NoError(t, store.Players.UpdateRanking(ctx, ids[0], 7))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := db.Store().Players.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 0, p.Ranking)
}

func TestMatchConstraintsAndResolution(t *testing.T) {
	db := New()
	ctx := context.Background()
	ids := seedPlayers(t, db, "Alice", "Bob")
	store := db.Store()

	tournament := &models.Tournament{ID: uuid.New(), Name: "Cup", StartDate: time.Now()}
	require.NoError(t, store.Tournaments.Create(ctx, tournament))

	err := store.Matches.Create(ctx, &models.Match{ID: uuid.New(), Player1ID: ids[0], Player2ID: uuid.New()})
	assert.ErrorIs(t, err, repositories.ErrMatchPlayerInvalid)

	err = store.Matches.Create(ctx, &models.Match{ID: uuid.New(), Player1ID: ids[0], Player2ID: ids[0]})
	assert.ErrorIs(t, err, repositories.ErrMatchSamePlayers)

	m := &models.Match{ID: uuid.New(), Player1ID: ids[0], Player2ID: ids[1], TournamentID: &tournament.ID, ScheduledTime: time.Now()}
	require.NoError(t, store.Matches.Create(ctx, m))

	got, err := store.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TournamentName)
	assert.Equal(t, "Cup", *got.TournamentName)
	assert.Equal(t, "Bob", got.Player2.Name)

	assert.ErrorIs(t, store.Players.Delete(ctx, ids[0]), repositories.ErrPlayerInUse)

	require.NoError(t, store.Tournaments.Delete(ctx, tournament.ID))
	got, err = store.Matches.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TournamentID)
	assert.Nil(t, got.TournamentName)
}

func TestColumnLengthsEnforced(t *testing.T) {
	db := New()
	ctx := context.Background()
	ids := seedPlayers(t, db, "Alice", "Bob")
	store := db.Store()
	long := func(n int) *string { s := strings.Repeat("x", n); return &s }

	err := store.Players.Create(ctx, &models.Player{ID: uuid.New(), Name: "Earl", PreferredCue: long(repositories.MaxPreferredCueLength + 1)})
	assert.ErrorIs(t, err, repositories.ErrValueTooLong)

	err = store.Tournaments.Create(ctx, &models.Tournament{ID: uuid.New(), Name: *long(repositories.MaxTournamentNameLength + 1), StartDate: time.Now()})
	assert.ErrorIs(t, err, repositories.ErrValueTooLong)

	m := &models.Match{ID: uuid.New(), Player1ID: ids[0], Player2ID: ids[1], ScheduledTime: time.Now(), Location: long(repositories.MaxLocationLength)}
	require.NoError(t, store.Matches.Create(ctx, m))

	m.Location = long(repositories.MaxLocationLength + 1)
	assert.ErrorIs(t, store.Matches.Update(ctx, m), repositories.ErrValueTooLong)
}
