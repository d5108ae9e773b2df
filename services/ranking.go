package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/google/uuid"
)

// RankingPolicy is the number of points a winner gains and a loser gives up.
type RankingPolicy struct {
	WinPoints  int
	LossPoints int
}

func DefaultRankingPolicy() RankingPolicy {
	return RankingPolicy{WinPoints: 1, LossPoints: 1}
}

// Apply returns the new rankings. The loser never drops below zero.
func (p RankingPolicy) Apply(winnerRanking, loserRanking int) (int, int) {
	loser := loserRanking - p.LossPoints
	if loser < 0 {
		loser = 0
	}
	return winnerRanking + p.WinPoints, loser
}

// RankingAdjuster awards a decided match to its winner.
type RankingAdjuster struct {
	policy RankingPolicy
}

func NewRankingAdjuster(policy RankingPolicy) *RankingAdjuster {
	return &RankingAdjuster{policy: policy}
}

// Adjust updates both players of m. Must run in the transaction that stored the winner.
func (a *RankingAdjuster) Adjust(ctx context.Context, players repositories.PlayerRepository, m *models.Match) error {
	if m.WinnerID == nil {
		return nil
	}
	winnerID := *m.WinnerID
	loserID := m.Opponent(winnerID)
	if loserID == uuid.Nil {
		return fmt.Errorf("%w: winner %s is not a player of match %s", ErrDataIntegrity, winnerID, m.ID)
	}

	winner, err := players.GetByID(ctx, winnerID)
	if err != nil {
		return integrityError(err, "winner", winnerID.String())
	}
	loser, err := players.GetByID(ctx, loserID)
	if err != nil {
		return integrityError(err, "loser", loserID.String())
	}

	winnerRanking, loserRanking := a.policy.Apply(winner.Ranking, loser.Ranking)
	if err := players.UpdateRanking(ctx, winner.ID, winnerRanking); err != nil {
		return fmt.Errorf("failed to update ranking of player %s: %w", winner.ID, err)
	}
	if err := players.UpdateRanking(ctx, loser.ID, loserRanking); err != nil {
		return fmt.Errorf("failed to update ranking of player %s: %w", loser.ID, err)
	}
	return nil
}

func integrityError(err error, role, id string) error {
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		return fmt.Errorf("%w: %s %s does not exist", ErrDataIntegrity, role, id)
	}
	return fmt.Errorf("failed to load %s %s: %w", role, id, err)
}
