package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/google/uuid"
)

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("not found")

	ErrPlayerNotFound     = fmt.Errorf("player %w", ErrNotFound)
	ErrMatchNotFound      = fmt.Errorf("match %w", ErrNotFound)
	ErrTournamentNotFound = fmt.Errorf("tournament %w", ErrNotFound)

	// Ошибки валидации
	ErrValidationFailed     = errors.New("validation failed")
	ErrSamePlayers          = fmt.Errorf("%w: player 1 and player 2 cannot be the same player", ErrValidationFailed)
	ErrScheduledTimeMissing = fmt.Errorf("%w: scheduled time is required", ErrValidationFailed)
	ErrPlayerIDMissing      = fmt.Errorf("%w: both player ids are required", ErrValidationFailed)
	ErrWinnerNotInMatch     = fmt.Errorf("%w: winner must be one of the match players", ErrValidationFailed)
	ErrEndBeforeStart       = fmt.Errorf("%w: end time must not be before scheduled time", ErrValidationFailed)
	ErrNegativeScore        = fmt.Errorf("%w: scores must not be negative", ErrValidationFailed)
	ErrPlayerNameRequired   = fmt.Errorf("%w: player name is required", ErrValidationFailed)
	ErrTournamentNameNeeded = fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	ErrTournamentDateRange  = fmt.Errorf("%w: tournament end date must not be before start date", ErrValidationFailed)
	ErrStartDateMissing     = fmt.Errorf("%w: tournament start date is required", ErrValidationFailed)

	// Ошибки конфликтов
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrPlayerHasMatches = errors.New("player still takes part in matches")

	// Stored data contradicts itself, e.g. a winner that is not one of the players.
	ErrDataIntegrity = errors.New("data integrity violation")
)

// checkLength fails with ErrValidationFailed when value has more than limit characters.
func checkLength(field string, value *string, limit int) error {
	if repositories.TooLongPtr(value, limit) {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrValidationFailed, field, limit)
	}
	return nil
}

// ScheduleConflictError carries the pair and time that could not be scheduled.
type ScheduleConflictError struct {
	Player1ID    uuid.UUID
	Player2ID    uuid.UUID
	ConflictTime time.Time
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("schedule conflict: player %s or player %s already has a match around %s",
		e.Player1ID, e.Player2ID, e.ConflictTime.UTC().Format(time.RFC3339))
}

func (e *ScheduleConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}
