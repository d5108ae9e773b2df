package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pool-tournament-manager/events"
	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

type CreateMatchInput struct {
	ScheduledTime time.Time
	Player1ID     uuid.UUID
	Player2ID     uuid.UUID
	TournamentID  *uuid.UUID
	Location      *string
	Notes         *string
}

// UpdateMatchInput is a partial update: nil fields are left untouched.
// A nil field and an explicit JSON null cannot be told apart.
// Only ScheduledTime and the player ids trigger a schedule check; moving
// EndTime alone is not re-checked against other matches.
type UpdateMatchInput struct {
	ScheduledTime *time.Time
	EndTime       *time.Time
	WinnerID      *uuid.UUID
	TournamentID  *uuid.UUID
	Player1ID     *uuid.UUID
	Player2ID     *uuid.UUID
	Location      *string
	Notes         *string
	Player1Score  *int
	Player2Score  *int
}

type MatchService interface {
	ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	// UpdateMatch returns found=false, with no error, when the match does not exist.
	UpdateMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (match *models.Match, found bool, err error)
	// DeleteMatch returns false, with no error, when the match does not exist.
	DeleteMatch(ctx context.Context, id uuid.UUID) (bool, error)
	ScheduleRoundRobin(ctx context.Context, input ScheduleRoundRobinInput) ([]models.Match, error)
}

type matchService struct {
	store     repositories.Store
	tx        repositories.Transactor
	detector  *ConflictDetector
	ranking   *RankingAdjuster
	publisher MatchEventPublisher
	metrics   MatchMetrics
	logger    *slog.Logger
}

func NewMatchService(
	store repositories.Store,
	tx repositories.Transactor,
	clock utils.Clock,
	ranking RankingPolicy,
	publisher MatchEventPublisher,
	metrics MatchMetrics,
	logger *slog.Logger,
) MatchService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &matchService{
		store:     store,
		tx:        tx,
		detector:  NewConflictDetector(clock, logger),
		ranking:   NewRankingAdjuster(ranking),
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *matchService) ListMatches(ctx context.Context, filter repositories.MatchFilter) ([]models.Match, error) {
	matches, err := s.store.Matches.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := s.store.Matches.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return match, nil
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.ScheduledTime.IsZero() {
		return nil, ErrScheduledTimeMissing
	}
	if input.Player1ID == uuid.Nil || input.Player2ID == uuid.Nil {
		return nil, ErrPlayerIDMissing
	}
	if input.Player1ID == input.Player2ID {
		return nil, ErrSamePlayers
	}

	match := &models.Match{
		ID:            uuid.New(),
		ScheduledTime: input.ScheduledTime.UTC(),
		Player1ID:     input.Player1ID,
		Player2ID:     input.Player2ID,
		TournamentID:  input.TournamentID,
		Location:      utils.TrimmedOrNil(input.Location),
		Notes:         utils.TrimmedOrNil(input.Notes),
	}
	if err := checkLength("location", match.Location, repositories.MaxLocationLength); err != nil {
		return nil, err
	}

	var created *models.Match
	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		if err := store.Locks.LockPlayers(ctx, match.Player1ID, match.Player2ID); err != nil {
			return err
		}
		if err := ensurePlayersExist(ctx, store.Players, match.Player1ID, match.Player2ID); err != nil {
			return err
		}
		if match.TournamentID != nil {
			tournament, err := store.Tournaments.GetByID(ctx, *match.TournamentID)
			if err != nil {
				return translateRepoError(err)
			}
			if match.Location == nil {
				match.Location = utils.TrimmedOrNil(tournament.Location)
			}
		}
		if err := s.checkSchedule(ctx, store.Matches, match.Player1ID, match.Player2ID, match.ScheduledTime, nil, "create"); err != nil {
			return err
		}
		if err := store.Matches.Create(ctx, match); err != nil {
			return translateRepoError(err)
		}

		var err error
		created, err = store.Matches.GetByID(ctx, match.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MatchCreated()
	s.publisher.PublishMatchEvent(events.MatchEvent{Type: events.MatchCreated, MatchID: created.ID, TournamentID: created.TournamentID, Match: created})
	s.logger.InfoContext(ctx, "Match created",
		slog.String("match_id", created.ID.String()),
		slog.String("player1_id", created.Player1ID.String()),
		slog.String("player2_id", created.Player2ID.String()),
		slog.Time("scheduled_time", created.ScheduledTime),
	)
	return created, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id uuid.UUID, input UpdateMatchInput) (*models.Match, bool, error) {
	var updated *models.Match
	var rankingAdjusted bool

	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		current, err := store.Matches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := store.Locks.LockPlayers(ctx, lockSet(current, input)...); err != nil {
			return err
		}
		// Re-read under the locks; a concurrent writer may have moved the match.
		match, err := store.Matches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if match.Player1ID != current.Player1ID || match.Player2ID != current.Player2ID {
			if err := store.Locks.LockPlayers(ctx, match.Player1ID, match.Player2ID); err != nil {
				return err
			}
		}

		previousWinner := match.WinnerID
		if err := s.applyUpdate(ctx, store, match, input); err != nil {
			return err
		}
		if err := store.Matches.Update(ctx, match); err != nil {
			return translateRepoError(err)
		}

		if input.WinnerID != nil && (previousWinner == nil || *previousWinner != *input.WinnerID) {
			if err := s.ranking.Adjust(ctx, store.Players, match); err != nil {
				return err
			}
			rankingAdjusted = true
		}

		updated, err = store.Matches.GetByID(ctx, id)
		return err
	})
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}

	s.metrics.MatchUpdated()
	if rankingAdjusted {
		s.metrics.RankingAdjusted()
	}
	s.publisher.PublishMatchEvent(events.MatchEvent{Type: events.MatchUpdated, MatchID: updated.ID, TournamentID: updated.TournamentID, Match: updated})
	s.logger.InfoContext(ctx, "Match updated", slog.String("match_id", id.String()), slog.Bool("ranking_adjusted", rankingAdjusted))
	return updated, true, nil
}

// applyUpdate validates and merges input into match, in the order time, players,
// tournament, plain fields, winner.
func (s *matchService) applyUpdate(ctx context.Context, store repositories.Store, match *models.Match, input UpdateMatchInput) error {
	if input.ScheduledTime != nil {
		newTime := input.ScheduledTime.UTC()
		if !newTime.Equal(match.ScheduledTime) {
			if err := s.checkSchedule(ctx, store.Matches, match.Player1ID, match.Player2ID, newTime, &match.ID, "update"); err != nil {
				return err
			}
			match.ScheduledTime = newTime
		}
	}

	playersChanged := false
	if input.Player1ID != nil && *input.Player1ID != match.Player1ID {
		if _, err := store.Players.GetByID(ctx, *input.Player1ID); err != nil {
			return translateRepoError(err)
		}
		match.Player1ID = *input.Player1ID
		playersChanged = true
	}
	if input.Player2ID != nil && *input.Player2ID != match.Player2ID {
		if _, err := store.Players.GetByID(ctx, *input.Player2ID); err != nil {
			return translateRepoError(err)
		}
		match.Player2ID = *input.Player2ID
		playersChanged = true
	}
	if playersChanged {
		if match.Player1ID == match.Player2ID {
			return ErrSamePlayers
		}
		if err := s.checkSchedule(ctx, store.Matches, match.Player1ID, match.Player2ID, match.ScheduledTime, &match.ID, "update"); err != nil {
			return err
		}
	}

	if input.TournamentID != nil && (match.TournamentID == nil || *match.TournamentID != *input.TournamentID) {
		tournament, err := store.Tournaments.GetByID(ctx, *input.TournamentID)
		if err != nil {
			return translateRepoError(err)
		}
		match.TournamentID = input.TournamentID
		if input.Location == nil && match.Location == nil {
			match.Location = utils.TrimmedOrNil(tournament.Location)
		}
	}

	if input.EndTime != nil {
		end := input.EndTime.UTC()
		match.EndTime = &end
	}
	if match.EndTime != nil && match.EndTime.Before(match.ScheduledTime) {
		return ErrEndBeforeStart
	}
	// A blank string clears the field.
	if input.Location != nil {
		match.Location = utils.TrimmedOrNil(input.Location)
		if err := checkLength("location", match.Location, repositories.MaxLocationLength); err != nil {
			return err
		}
	}
	if input.Notes != nil {
		match.Notes = utils.TrimmedOrNil(input.Notes)
	}
	if input.Player1Score != nil {
		match.Player1Score = input.Player1Score
	}
	if input.Player2Score != nil {
		match.Player2Score = input.Player2Score
	}
	if (match.Player1Score != nil && *match.Player1Score < 0) || (match.Player2Score != nil && *match.Player2Score < 0) {
		return ErrNegativeScore
	}

	if input.WinnerID != nil {
		match.WinnerID = input.WinnerID
	}
	if match.WinnerID != nil && !match.Involves(*match.WinnerID) {
		return ErrWinnerNotInMatch
	}
	return nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted *models.Match
	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		match, err := store.Matches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := store.Locks.LockPlayers(ctx, match.Player1ID, match.Player2ID); err != nil {
			return err
		}
		if err := store.Matches.Delete(ctx, id); err != nil {
			return err
		}
		deleted = match
		return nil
	})
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete match %s: %w", id, err)
	}

	s.metrics.MatchDeleted()
	s.publisher.PublishMatchEvent(events.MatchEvent{Type: events.MatchDeleted, MatchID: id, TournamentID: deleted.TournamentID})
	s.logger.InfoContext(ctx, "Match deleted", slog.String("match_id", id.String()))
	return true, nil
}

// checkSchedule loads every match touching either player and fails with a
// *ScheduleConflictError if a match at t would overlap one of them.
func (s *matchService) checkSchedule(ctx context.Context, matches repositories.MatchRepository, p1, p2 uuid.UUID, t time.Time, excludeID *uuid.UUID, operation string) error {
	existing, err := matches.ListTouchingPlayers(ctx, []uuid.UUID{p1, p2}, excludeID)
	if err != nil {
		return fmt.Errorf("failed to load matches for schedule check: %w", err)
	}
	if s.detector.HasConflict(p1, p2, t, existing) {
		s.metrics.ScheduleConflict(operation)
		return &ScheduleConflictError{Player1ID: p1, Player2ID: p2, ConflictTime: t}
	}
	return nil
}

func ensurePlayersExist(ctx context.Context, players repositories.PlayerRepository, ids ...uuid.UUID) error {
	for _, id := range ids {
		if _, err := players.GetByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrPlayerNotFound) {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
			}
			return err
		}
	}
	return nil
}

// lockSet is every player the update may touch, before and after.
func lockSet(m *models.Match, input UpdateMatchInput) []uuid.UUID {
	ids := []uuid.UUID{m.Player1ID, m.Player2ID}
	if input.Player1ID != nil {
		ids = append(ids, *input.Player1ID)
	}
	if input.Player2ID != nil {
		ids = append(ids, *input.Player2ID)
	}
	return ids
}

// translateRepoError maps repository sentinels onto the service taxonomy.
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound), errors.Is(err, repositories.ErrMatchPlayerInvalid):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound), errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSamePlayers):
		return ErrSamePlayers
	case errors.Is(err, repositories.ErrMatchWinnerInvalid):
		return ErrWinnerNotInMatch
	case errors.Is(err, repositories.ErrMatchScoreInvalid):
		return ErrNegativeScore
	case errors.Is(err, repositories.ErrPlayerInUse):
		return ErrPlayerHasMatches
	case errors.Is(err, repositories.ErrTournamentDatesInvalid):
		return ErrTournamentDateRange
	case errors.Is(err, repositories.ErrValueTooLong):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	default:
		return err
	}
}
