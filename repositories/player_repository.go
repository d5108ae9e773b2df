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
	ErrPlayerNotFound       = errors.New("player not found")
	ErrPlayerInUse          = errors.New("player is referenced by matches")
	ErrPlayerRankingInvalid = errors.New("player ranking must not be negative")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	// List returns players ordered by name. A non-empty search matches name or email, case-insensitively.
	List(ctx context.Context, search string) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	UpdateRanking(ctx context.Context, id uuid.UUID, ranking int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresPlayerRepository struct {
	db SQLExecutor
}

func NewPostgresPlayerRepository(db SQLExecutor) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `
	p.id, p.name, p.email, p.profile_picture_url, p.preferred_cue, p.ranking, p.created_at,
	(SELECT COUNT(*) FROM matches m WHERE m.player1_id = p.id OR m.player2_id = p.id) AS match_count`

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (id, name, email, profile_picture_url, preferred_cue, ranking)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		player.ID,
		player.Name,
		player.Email,
		player.ProfilePictureURL,
		player.PreferredCue,
		player.Ranking,
	).Scan(&player.CreatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players p WHERE p.id = $1`

	player, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %s: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, search string) ([]models.Player, error) {
	var where whereBuilder
	if search != "" {
		where.add(`(LOWER(p.name) LIKE ? OR LOWER(p.email) LIKE ?)`, likePattern(search))
	}
	query := `SELECT` + playerColumns + ` FROM players p` + where.String() + ` ORDER BY p.name ASC, p.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, email = $2, profile_picture_url = $3, preferred_cue = $4, ranking = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		player.Name,
		player.Email,
		player.ProfilePictureURL,
		player.PreferredCue,
		player.Ranking,
		player.ID,
	)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateRanking(ctx context.Context, id uuid.UUID, ranking int) error {
	query := `UPDATE players SET ranking = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, ranking, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := constraintViolation(err); ok {
		switch {
		case code == pqStringTooLong:
			return ErrValueTooLong
		case code == pqForeignKeyViolation:
			return ErrPlayerInUse
		case code == pqCheckViolation && constraint == "players_ranking_check":
			return ErrPlayerRankingInvalid
		}
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.ProfilePictureURL,
		&p.PreferredCue,
		&p.Ranking,
		&p.CreatedAt,
		&p.MatchCount,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
