// Package memory is an in-process implementation of the repositories, used by
// service and handler tests. It mirrors the relational constraints of the
// Postgres schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/pool-tournament-manager/models"
	"github.com/Dosada05/pool-tournament-manager/repositories"
	"github.com/google/uuid"
)

type DB struct {
	txMu sync.Mutex // serializes WithinTx

	mu          sync.RWMutex
	players     map[uuid.UUID]models.Player
	matches     map[uuid.UUID]models.Match
	tournaments map[uuid.UUID]models.Tournament
}

func New() *DB {
	return &DB{
		players:     make(map[uuid.UUID]models.Player),
		matches:     make(map[uuid.UUID]models.Match),
		tournaments: make(map[uuid.UUID]models.Tournament),
	}
}

func (db *DB) Store() repositories.Store {
	return repositories.Store{
		Players:     &playerRepo{db: db},
		Matches:     &matchRepo{db: db},
		Tournaments: &tournamentRepo{db: db},
		Locks:       noopLocker{},
	}
}

// WithinTx runs transactions one at a time and restores the previous state when fn fails.
func (db *DB) WithinTx(ctx context.Context, fn func(store repositories.Store) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := db.snapshot()
	if err := fn(db.Store()); err != nil {
		db.restore(snapshot)
		return err
	}
	return nil
}

type state struct {
	players     map[uuid.UUID]models.Player
	matches     map[uuid.UUID]models.Match
	tournaments map[uuid.UUID]models.Tournament
}

func (db *DB) snapshot() state {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s := state{
		players:     make(map[uuid.UUID]models.Player, len(db.players)),
		matches:     make(map[uuid.UUID]models.Match, len(db.matches)),
		tournaments: make(map[uuid.UUID]models.Tournament, len(db.tournaments)),
	}
	for k, v := range db.players {
		s.players[k] = v
	}
	for k, v := range db.matches {
		s.matches[k] = v
	}
	for k, v := range db.tournaments {
		s.tournaments[k] = v
	}
	return s
}

func (db *DB) restore(s state) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.players = s.players
	db.matches = s.matches
	db.tournaments = s.tournaments
}

type noopLocker struct{}

func (noopLocker) LockPlayers(context.Context, ...uuid.UUID) error { return nil }

type playerRepo struct{ db *DB }

func (r *playerRepo) Create(_ context.Context, p *models.Player) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := checkPlayer(p); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	stored := *p
	stored.MatchCount = 0
	r.db.players[p.ID] = stored
	return nil
}

func (r *playerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	p.MatchCount = r.db.countPlayerMatches(id)
	return &p, nil
}

func (r *playerRepo) List(_ context.Context, search string) ([]models.Player, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	term := strings.ToLower(search)
	out := make([]models.Player, 0, len(r.db.players))
	for _, p := range r.db.players {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Email), term) {
			continue
		}
		p.MatchCount = r.db.countPlayerMatches(p.ID)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *playerRepo) Update(_ context.Context, p *models.Player) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.players[p.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if err := checkPlayer(p); err != nil {
		return err
	}
	stored := *p
	stored.CreatedAt = existing.CreatedAt
	r.db.players[p.ID] = stored
	return nil
}

func (r *playerRepo) UpdateRanking(_ context.Context, id uuid.UUID, ranking int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if ranking < 0 {
		return repositories.ErrPlayerRankingInvalid
	}
	p.Ranking = ranking
	r.db.players[id] = p
	return nil
}

func (r *playerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	if r.db.countPlayerMatches(id) > 0 {
		return repositories.ErrPlayerInUse
	}
	delete(r.db.players, id)
	return nil
}

type tournamentRepo struct{ db *DB }

func (r *tournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := checkTournament(t); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
	}
	stored := *t
	stored.MatchCount = 0
	r.db.tournaments[t.ID] = stored
	return nil
}

func (r *tournamentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	t, ok := r.db.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	t.MatchCount = r.db.countTournamentMatches(id)
	return &t, nil
}

func (r *tournamentRepo) List(_ context.Context, isActive *bool) ([]models.Tournament, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Tournament, 0, len(r.db.tournaments))
	for _, t := range r.db.tournaments {
		if isActive != nil && t.IsActive != *isActive {
			continue
		}
		t.MatchCount = r.db.countTournamentMatches(t.ID)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *tournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if err := checkTournament(t); err != nil {
		return err
	}
	stored := *t
	stored.CreatedAt = existing.CreatedAt
	r.db.tournaments[t.ID] = stored
	return nil
}

func (r *tournamentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.db.tournaments, id)
	for mid, m := range r.db.matches {
		if m.TournamentID != nil && *m.TournamentID == id {
			m.TournamentID = nil
			r.db.matches[mid] = m
		}
	}
	return nil
}

type matchRepo struct{ db *DB }

func (r *matchRepo) Create(_ context.Context, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.checkMatch(m); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	r.db.matches[m.ID] = stripResolved(*m)
	return nil
}

func (r *matchRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Match, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	m, ok := r.db.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	resolved := r.db.resolve(m)
	return &resolved, nil
}

func (r *matchRepo) List(_ context.Context, filter repositories.MatchFilter) ([]models.Match, error) {
	return r.collect(filter.Matches), nil
}

func (r *matchRepo) ListTouchingPlayers(_ context.Context, playerIDs []uuid.UUID, excludeID *uuid.UUID) ([]models.Match, error) {
	return r.collect(func(m *models.Match) bool {
		if excludeID != nil && m.ID == *excludeID {
			return false
		}
		for _, id := range playerIDs {
			if m.Involves(id) {
				return true
			}
		}
		return false
	}), nil
}

func (r *matchRepo) collect(keep func(m *models.Match) bool) []models.Match {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]models.Match, 0)
	for _, m := range r.db.matches {
		if keep(&m) {
			out = append(out, r.db.resolve(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledTime.Equal(out[j].ScheduledTime) {
			return out[i].ScheduledTime.Before(out[j].ScheduledTime)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *matchRepo) Update(_ context.Context, m *models.Match) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if err := r.db.checkMatch(m); err != nil {
		return err
	}
	stored := stripResolved(*m)
	stored.CreatedAt = existing.CreatedAt
	r.db.matches[m.ID] = stored
	return nil
}

func (r *matchRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.db.matches, id)
	return nil
}

// checkMatch enforces the matches table constraints. Caller holds mu.
func (db *DB) checkMatch(m *models.Match) error {
	if _, ok := db.players[m.Player1ID]; !ok {
		return repositories.ErrMatchPlayerInvalid
	}
	if _, ok := db.players[m.Player2ID]; !ok {
		return repositories.ErrMatchPlayerInvalid
	}
	if m.TournamentID != nil {
		if _, ok := db.tournaments[*m.TournamentID]; !ok {
			return repositories.ErrMatchTournamentInvalid
		}
	}
	if m.Player1ID == m.Player2ID {
		return repositories.ErrMatchSamePlayers
	}
	if m.WinnerID != nil && !m.Involves(*m.WinnerID) {
		return repositories.ErrMatchWinnerInvalid
	}
	if (m.Player1Score != nil && *m.Player1Score < 0) || (m.Player2Score != nil && *m.Player2Score < 0) {
		return repositories.ErrMatchScoreInvalid
	}
	if repositories.TooLongPtr(m.Location, repositories.MaxLocationLength) {
		return repositories.ErrValueTooLong
	}
	return nil
}

// checkPlayer enforces the players table constraints.
func checkPlayer(p *models.Player) error {
	if p.Ranking < 0 {
		return repositories.ErrPlayerRankingInvalid
	}
	if repositories.TooLong(p.Name, repositories.MaxPlayerNameLength) ||
		repositories.TooLong(p.Email, repositories.MaxEmailLength) ||
		repositories.TooLongPtr(p.PreferredCue, repositories.MaxPreferredCueLength) {
		return repositories.ErrValueTooLong
	}
	return nil
}

// checkTournament enforces the tournaments table constraints.
func checkTournament(t *models.Tournament) error {
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return repositories.ErrTournamentDatesInvalid
	}
	if repositories.TooLong(t.Name, repositories.MaxTournamentNameLength) ||
		repositories.TooLongPtr(t.Location, repositories.MaxLocationLength) {
		return repositories.ErrValueTooLong
	}
	return nil
}

// resolve fills the joined fields. Caller holds mu.
func (db *DB) resolve(m models.Match) models.Match {
	if m.TournamentID != nil {
		if t, ok := db.tournaments[*m.TournamentID]; ok {
			name := t.Name
			m.TournamentName = &name
		}
	}
	if p, ok := db.players[m.Player1ID]; ok {
		m.Player1 = p.Summary()
	}
	if p, ok := db.players[m.Player2ID]; ok {
		m.Player2 = p.Summary()
	}
	return m
}

func (db *DB) countPlayerMatches(id uuid.UUID) int {
	n := 0
	for _, m := range db.matches {
		if m.Involves(id) {
			n++
		}
	}
	return n
}

func (db *DB) countTournamentMatches(id uuid.UUID) int {
	n := 0
	for _, m := range db.matches {
		if m.TournamentID != nil && *m.TournamentID == id {
			n++
		}
	}
	return n
}

func stripResolved(m models.Match) models.Match {
	m.TournamentName = nil
	m.Player1 = nil
	m.Player2 = nil
	return m
}

func now() time.Time {
	return time.Now().UTC()
}
