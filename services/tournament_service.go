package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/Dosada05/pool-tournament-manager/utils"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Name        string
	StartDate   time.Time
	EndDate     *time.Time
	Location    *string
	Description *string
	IsActive    *bool
}

type UpdateTournamentInput struct {
	Name        *string
	StartDate   *time.Time
	EndDate     *time.Time
	Location    *string
	Description *string
	IsActive    *bool
}

type TournamentService interface {
	ListTournaments(ctx context.Context, isActive *bool) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error)
	// DeleteTournament detaches the tournament's matches and returns false if it does not exist.
	DeleteTournament(ctx context.Context, id uuid.UUID) (bool, error)
}

type tournamentService struct {
	tournaments repositories.TournamentRepository
	logger      *slog.Logger
}

func NewTournamentService(tournaments repositories.TournamentRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournaments: tournaments, logger: logger}
}

func (s *tournamentService) ListTournaments(ctx context.Context, isActive *bool) ([]models.Tournament, error) {
	tournaments, err := s.tournaments.List(ctx, isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name, err := validateTournamentName(input.Name)
	if err != nil {
		return nil, err
	}
	if input.StartDate.IsZero() {
		return nil, ErrStartDateMissing
	}

	t := &models.Tournament{
		ID:          uuid.New(),
		Name:        name,
		StartDate:   input.StartDate.UTC(),
		Location:    utils.TrimmedOrNil(input.Location),
		Description: utils.TrimmedOrNil(input.Description),
		IsActive:    true,
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		t.EndDate = &end
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return nil, ErrTournamentDateRange
	}
	if err := checkLength("location", t.Location, repositories.MaxLocationLength); err != nil {
		return nil, err
	}

	if err := s.tournaments.Create(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}
	s.logger.InfoContext(ctx, "Tournament created", slog.String("tournament_id", t.ID.String()), slog.String("name", t.Name))
	return t, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if input.Name != nil {
		if t.Name, err = validateTournamentName(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.StartDate != nil {
		t.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		t.EndDate = &end
	}
	if input.Location != nil {
		t.Location = utils.TrimmedOrNil(input.Location)
		if err := checkLength("location", t.Location, repositories.MaxLocationLength); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		t.Description = utils.TrimmedOrNil(input.Description)
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return nil, ErrTournamentDateRange
	}

	if err := s.tournaments.Update(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := s.tournaments.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Tournament deleted", slog.String("tournament_id", id.String()))
	return true, nil
}

func validateTournamentName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrTournamentNameNeeded
	}
	if err := checkLength("tournament name", &name, repositories.MaxTournamentNameLength); err != nil {
		return "", err
	}
	return name, nil
}
