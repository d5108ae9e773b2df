package brackets

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotEnoughPlayers = errors.New("round robin needs at least 2 players")
	ErrDuplicatePlayer  = errors.New("player listed more than once")
	ErrInvalidLegs      = errors.New("legs must be 1 or 2")
)

// Pairing is one match of a round-robin schedule. Rounds are 1-based.
type Pairing struct {
	Round     int
	Player1ID uuid.UUID
	Player2ID uuid.UUID
}

// RoundRobin pairs every player with every other player once per leg.
// Rounds are built with the circle method, so nobody plays twice in a round;
// with an odd number of players one player sits out each round.
// The second leg repeats the first with the players swapped.
func RoundRobin(players []uuid.UUID, legs int) ([]Pairing, error) {
	if legs != 1 && legs != 2 {
		return nil, ErrInvalidLegs
	}
	if len(players) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughPlayers, len(players))
	}

	seen := make(map[uuid.UUID]bool, len(players))
	order := make([]uuid.UUID, 0, len(players)+1)
	for _, id := range players {
		if id == uuid.Nil {
			return nil, errors.New("player id must not be empty")
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
		order = append(order, id)
	}
	if len(order)%2 == 1 {
		order = append(order, uuid.Nil) // bye
	}

	n := len(order)
	rounds := n - 1
	pairings := make([]Pairing, 0, legs*len(players)*(len(players)-1)/2)

	for round := 1; round <= rounds; round++ {
		for i := 0; i < n/2; i++ {
			home, away := order[i], order[n-1-i]
			if home == uuid.Nil || away == uuid.Nil {
				continue
			}
			// The fixed player alternates sides.
			if i == 0 && round%2 == 0 {
				home, away = away, home
			}
			pairings = append(pairings, Pairing{Round: round, Player1ID: home, Player2ID: away})
		}

		// Keep order[0] in place and rotate the rest one step clockwise.
		last := order[n-1]
		copy(order[2:], order[1:n-1])
		order[1] = last
	}

	if legs == 2 {
		firstLeg := len(pairings)
		for _, p := range pairings[:firstLeg] {
			pairings = append(pairings, Pairing{Round: p.Round + rounds, Player1ID: p.Player2ID, Player2ID: p.Player1ID})
		}
	}

	return pairings, nil
}

// Rounds returns how many rounds RoundRobin produces for the given field size.
func Rounds(players, legs int) int {
	if players < 2 {
		return 0
	}
	if players%2 == 1 {
		players++
	}
	return (players - 1) * legs
}
