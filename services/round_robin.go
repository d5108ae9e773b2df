package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pool-tournament-manager/brackets"
	"github.com/Dosada05/pool-tournament-manager/events"
	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

const (
	DefaultRoundInterval = time.Hour
	// MinRoundInterval is the shortest gap at which consecutive rounds never overlap.
	MinRoundInterval = DefaultMatchBuffer + UpcomingMatchLeadTime
)

type ScheduleRoundRobinInput struct {
	TournamentID  uuid.UUID
	PlayerIDs     []uuid.UUID
	StartTime     time.Time
	RoundInterval time.Duration // zero means DefaultRoundInterval
	Legs          int           // zero means a single leg
	Location      *string
}

// ScheduleRoundRobin creates every match of a round-robin for the tournament.
// Round k starts at StartTime + (k-1)*RoundInterval. Either all matches are
// created or, on the first conflict or error, none are.
func (s *matchService) ScheduleRoundRobin(ctx context.Context, input ScheduleRoundRobinInput) ([]models.Match, error) {
	if input.TournamentID == uuid.Nil {
		return nil, fmt.Errorf("%w: tournament id is required", ErrValidationFailed)
	}
	if input.StartTime.IsZero() {
		return nil, ErrScheduledTimeMissing
	}
	interval := input.RoundInterval
	if interval == 0 {
		interval = DefaultRoundInterval
	}
	if interval < MinRoundInterval {
		return nil, fmt.Errorf("%w: round interval must be at least %s", ErrValidationFailed, MinRoundInterval)
	}
	if err := checkLength("location", utils.TrimmedOrNil(input.Location), repositories.MaxLocationLength); err != nil {
		return nil, err
	}
	legs := input.Legs
	if legs == 0 {
		legs = 1
	}

	pairings, err := brackets.RoundRobin(input.PlayerIDs, legs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	start := input.StartTime.UTC()
	var created []models.Match
	err = s.tx.WithinTx(ctx, func(store repositories.Store) error {
		if err := store.Locks.LockPlayers(ctx, input.PlayerIDs...); err != nil {
			return err
		}
		if err := ensurePlayersExist(ctx, store.Players, input.PlayerIDs...); err != nil {
			return err
		}
		tournament, err := store.Tournaments.GetByID(ctx, input.TournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		location := utils.TrimmedOrNil(input.Location)
		if location == nil {
			location = utils.TrimmedOrNil(tournament.Location)
		}

		created = make([]models.Match, 0, len(pairings))
		for _, p := range pairings {
			tournamentID := tournament.ID
			match := &models.Match{
				ID:            uuid.New(),
				ScheduledTime: start.Add(time.Duration(p.Round-1) * interval),
				Player1ID:     p.Player1ID,
				Player2ID:     p.Player2ID,
				TournamentID:  &tournamentID,
				Location:      location,
			}
			if err := s.checkSchedule(ctx, store.Matches, match.Player1ID, match.Player2ID, match.ScheduledTime, nil, "round_robin"); err != nil {
				return err
			}
			if err := store.Matches.Create(ctx, match); err != nil {
				return translateRepoError(err)
			}
			stored, err := store.Matches.GetByID(ctx, match.ID)
			if err != nil {
				return err
			}
			created = append(created, *stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		m := &created[i]
		s.metrics.MatchCreated()
		s.publisher.PublishMatchEvent(events.MatchEvent{Type: events.MatchCreated, MatchID: m.ID, TournamentID: m.TournamentID, Match: m})
	}
	s.logger.InfoContext(ctx, "Round robin scheduled",
		slog.String("tournament_id", input.TournamentID.String()),
		slog.Int("players", len(input.PlayerIDs)),
		slog.Int("matches", len(created)),
		slog.Int("rounds", brackets.Rounds(len(input.PlayerIDs), legs)),
	)
	return created, nil
}
