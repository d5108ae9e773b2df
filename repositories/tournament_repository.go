package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/google/uuid"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentDatesInvalid = errors.New("tournament end date is before start date")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	// List returns tournaments newest start first. A nil isActive returns all of them.
	List(ctx context.Context, isActive *bool) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	// Delete removes the tournament. Its matches survive with tournament_id cleared.
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresTournamentRepository struct {
	db SQLExecutor
}

func NewPostgresTournamentRepository(db SQLExecutor) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	t.id, t.name, t.start_date, t.end_date, t.location, t.description, t.is_active, t.created_at,
	(SELECT COUNT(*) FROM matches m WHERE m.tournament_id = t.id) AS match_count`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, start_date, end_date, location, description, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Name, t.StartDate, t.EndDate, t.Location, t.Description, t.IsActive,
	).Scan(&t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments t WHERE t.id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament by id %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, isActive *bool) ([]models.Tournament, error) {
	var where whereBuilder
	if isActive != nil {
		where.add("t.is_active = ?", *isActive)
	}
	query := `SELECT` + tournamentColumns + ` FROM tournaments t` + where.String() + ` ORDER BY t.start_date DESC, t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $1, start_date = $2, end_date = $3, location = $4, description = $5, is_active = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.StartDate, t.EndDate, t.Location, t.Description, t.IsActive, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := constraintViolation(err); ok {
		switch {
		case code == pqStringTooLong:
			return ErrValueTooLong
		case code == pqCheckViolation && constraint == "tournaments_dates_check":
			return ErrTournamentDatesInvalid
		}
	}
	return err
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.StartDate,
		&t.EndDate,
		&t.Location,
		&t.Description,
		&t.IsActive,
		&t.CreatedAt,
		&t.MatchCount,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
