package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchPlayerInvalid     = errors.New("match references an unknown player")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchSamePlayers       = errors.New("match players must be distinct")
	ErrMatchWinnerInvalid     = errors.New("match winner must be one of its players")
	ErrMatchScoreInvalid      = errors.New("match scores must not be negative")
)

// MatchFilter narrows a match listing. Nil fields are ignored; set fields are AND-ed.
type MatchFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	PlayerID     *uuid.UUID
	TournamentID *uuid.UUID
}

func (f MatchFilter) apply(where *whereBuilder) {
	if f.StartDate != nil {
		where.add("m.scheduled_time >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		where.add("m.scheduled_time <= ?", *f.EndDate)
	}
	if f.PlayerID != nil {
		where.add("(m.player1_id = ? OR m.player2_id = ?)", *f.PlayerID)
	}
	if f.TournamentID != nil {
		where.add("m.tournament_id = ?", *f.TournamentID)
	}
}

// Matches reports whether m satisfies every set predicate.
func (f MatchFilter) Matches(m *models.Match) bool {
	if f.StartDate != nil && m.ScheduledTime.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && m.ScheduledTime.After(*f.EndDate) {
		return false
	}
	if f.PlayerID != nil && !m.Involves(*f.PlayerID) {
		return false
	}
	if f.TournamentID != nil && (m.TournamentID == nil || *m.TournamentID != *f.TournamentID) {
		return false
	}
	return true
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	// GetByID returns the match with player summaries and tournament name resolved.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]models.Match, error)
	// ListTouchingPlayers returns every match in which any of the given players takes part,
	// optionally excluding one match.
	ListTouchingPlayers(ctx context.Context, playerIDs []uuid.UUID, excludeID *uuid.UUID) ([]models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresMatchRepository struct {
	db SQLExecutor
}

func NewPostgresMatchRepository(db SQLExecutor) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchSelect = `
	SELECT
		m.id, m.scheduled_time, m.end_time, m.winner_id, m.tournament_id, m.player1_id, m.player2_id,
		m.location, m.notes, m.player1_score, m.player2_score, m.created_at,
		t.name,
		p1.name, p1.profile_picture_url,
		p2.name, p2.profile_picture_url
	FROM matches m
	LEFT JOIN tournaments t ON t.id = m.tournament_id
	LEFT JOIN players p1 ON p1.id = m.player1_id
	LEFT JOIN players p2 ON p2.id = m.player2_id`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			id, scheduled_time, end_time, winner_id, tournament_id, player1_id, player2_id,
			location, notes, player1_score, player2_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		match.ID,
		match.ScheduledTime,
		match.EndTime,
		match.WinnerID,
		match.TournamentID,
		match.Player1ID,
		match.Player2ID,
		match.Location,
		match.Notes,
		match.Player1Score,
		match.Player2Score,
	).Scan(&match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	match, err := scanMatch(r.db.QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match by id %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	var where whereBuilder
	filter.apply(&where)
	return r.query(ctx, matchSelect+where.String()+` ORDER BY m.scheduled_time ASC, m.created_at ASC`, where.args...)
}

func (r *postgresMatchRepository) ListTouchingPlayers(ctx context.Context, playerIDs []uuid.UUID, excludeID *uuid.UUID) ([]models.Match, error) {
	if len(playerIDs) == 0 {
		return []models.Match{}, nil
	}
	ids := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		ids[i] = id.String()
	}

	var where whereBuilder
	where.add("(m.player1_id = ANY(?::uuid[]) OR m.player2_id = ANY(?::uuid[]))", pq.Array(ids))
	if excludeID != nil {
		where.add("m.id <> ?", *excludeID)
	}
	return r.query(ctx, matchSelect+where.String()+` ORDER BY m.scheduled_time ASC`, where.args...)
}

func (r *postgresMatchRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET scheduled_time = $1, end_time = $2, winner_id = $3, tournament_id = $4,
			player1_id = $5, player2_id = $6, location = $7, notes = $8,
			player1_score = $9, player2_score = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		match.ScheduledTime,
		match.EndTime,
		match.WinnerID,
		match.TournamentID,
		match.Player1ID,
		match.Player2ID,
		match.Location,
		match.Notes,
		match.Player1Score,
		match.Player2Score,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := constraintViolation(err); ok {
		switch code {
		case pqStringTooLong:
			return ErrValueTooLong
		case pqForeignKeyViolation:
			switch constraint {
			case "matches_player1_id_fkey", "matches_player2_id_fkey":
				return ErrMatchPlayerInvalid
			case "matches_tournament_id_fkey":
				return ErrMatchTournamentInvalid
			}
		case pqCheckViolation:
			switch constraint {
			case "matches_distinct_players_check":
				return ErrMatchSamePlayers
			case "matches_winner_check":
				return ErrMatchWinnerInvalid
			case "matches_scores_check":
				return ErrMatchScoreInvalid
			}
		}
	}
	return err
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var tournamentName sql.NullString
	var p1Name, p1Picture, p2Name, p2Picture sql.NullString

	err := row.Scan(
		&m.ID,
		&m.ScheduledTime,
		&m.EndTime,
		&m.WinnerID,
		&m.TournamentID,
		&m.Player1ID,
		&m.Player2ID,
		&m.Location,
		&m.Notes,
		&m.Player1Score,
		&m.Player2Score,
		&m.CreatedAt,
		&tournamentName,
		&p1Name, &p1Picture,
		&p2Name, &p2Picture,
	)
	if err != nil {
		return nil, err
	}

	if tournamentName.Valid {
		m.TournamentName = &tournamentName.String
	}
	if p1Name.Valid {
		m.Player1 = &models.PlayerSummary{ID: m.Player1ID, Name: p1Name.String, ProfilePictureURL: p1Picture.String}
	}
	if p2Name.Valid {
		m.Player2 = &models.PlayerSummary{ID: m.Player2ID, Name: p2Name.String, ProfilePictureURL: p2Picture.String}
	}
	return &m, nil
}
