package brackets

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayers(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

type pairKey struct{ a, b uuid.UUID }

func keyOf(p Pairing) pairKey {
	if p.Player1ID.String() < p.Player2ID.String() {
		return pairKey{p.Player1ID, p.Player2ID}
	}
	return pairKey{p.Player2ID, p.Player1ID}
}

func TestRoundRobinCoversEveryPairOnce(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8, 9} {
		players := newPlayers(n)

		pairings, err := RoundRobin(players, 1)
		require.NoError(t, err)
		require.Len(t, pairings, n*(n-1)/2, "players=%d", n)

		seen := make(map[pairKey]bool)
		perRound := make(map[int]map[uuid.UUID]bool)
		for _, p := range pairings {
			assert.NotEqual(t, p.Player1ID, p.Player2ID)
			k := keyOf(p)
			assert.False(t, seen[k], "pair repeated for players=%d", n)
			seen[k] = true

			if perRound[p.Round] == nil {
				perRound[p.Round] = make(map[uuid.UUID]bool)
			}
			for _, id := range []uuid.UUID{p.Player1ID, p.Player2ID} {
				assert.False(t, perRound[p.Round][id], "player plays twice in round %d", p.Round)
				perRound[p.Round][id] = true
			}
		}
		assert.Len(t, perRound, Rounds(n, 1), "players=%d", n)
	}
}

func TestRoundRobinSecondLegSwapsSides(t *testing.T) {
	players := newPlayers(4)

	pairings, err := RoundRobin(players, 2)
	require.NoError(t, err)
	require.Len(t, pairings, 12)

	first, second := pairings[:6], pairings[6:]
	for i := range first {
		assert.Equal(t, first[i].Player1ID, second[i].Player2ID)
		assert.Equal(t, first[i].Player2ID, second[i].Player1ID)
		assert.Equal(t, first[i].Round+3, second[i].Round)
	}
	assert.Equal(t, 6, Rounds(4, 2))
}

func TestRoundRobinRejectsBadInput(t *testing.T) {
	one := newPlayers(1)
	_, err := RoundRobin(one, 1)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	dup := newPlayers(3)
	dup[2] = dup[0]
	_, err = RoundRobin(dup, 1)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)

	_, err = RoundRobin(newPlayers(4), 3)
	assert.ErrorIs(t, err, ErrInvalidLegs)

	_, err = RoundRobin([]uuid.UUID{uuid.New(), uuid.Nil}, 1)
	assert.Error(t, err)
}
