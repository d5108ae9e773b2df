package models

import (
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ScheduledTime time.Time  `json:"scheduledTime" db:"scheduled_time"`
	EndTime       *time.Time `json:"endTime,omitempty" db:"end_time"`
	WinnerID      *uuid.UUID `json:"winnerId,omitempty" db:"winner_id"`
	TournamentID  *uuid.UUID `json:"tournamentId,omitempty" db:"tournament_id"`
	Player1ID     uuid.UUID  `json:"player1Id" db:"player1_id"`
	Player2ID     uuid.UUID  `json:"player2Id" db:"player2_id"`
	Location      *string    `json:"location,omitempty" db:"location"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	Player1Score  *int       `json:"player1Score,omitempty" db:"player1_score"`
	Player2Score  *int       `json:"player2Score,omitempty" db:"player2_score"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`

	// Resolved on read, never persisted.
	TournamentName *string        `json:"tournamentName,omitempty" db:"-"`
	Player1        *PlayerSummary `json:"player1,omitempty" db:"-"`
	Player2        *PlayerSummary `json:"player2,omitempty" db:"-"`
}

// Involves reports whether the player takes part in the match.
func (m *Match) Involves(playerID uuid.UUID) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Opponent returns the other player's id, or uuid.Nil if playerID is not in the match.
func (m *Match) Opponent(playerID uuid.UUID) uuid.UUID {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	default:
		return uuid.Nil
	}
}
