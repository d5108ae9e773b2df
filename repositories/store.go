package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// PlayerLocker serializes schedule-sensitive writes per player. Locks are held
// until the surrounding transaction ends.
type PlayerLocker interface {
	LockPlayers(ctx context.Context, playerIDs ...uuid.UUID) error
}

// Store groups the repositories that share one executor.
type Store struct {
	Players     PlayerRepository
	Matches     MatchRepository
	Tournaments TournamentRepository
	Locks       PlayerLocker
}

func NewPostgresStore(db SQLExecutor) Store {
	return Store{
		Players:     NewPostgresPlayerRepository(db),
		Matches:     NewPostgresMatchRepository(db),
		Tournaments: NewPostgresTournamentRepository(db),
		Locks:       &advisoryLocker{db: db},
	}
}

// Transactor runs fn against a Store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(store Store) error) error
}

type postgresTransactor struct {
	db *sql.DB
}

func NewPostgresTransactor(db *sql.DB) Transactor {
	return &postgresTransactor{db: db}
}

func (t *postgresTransactor) WithinTx(ctx context.Context, fn func(store Store) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(NewPostgresStore(tx))
}

type advisoryLocker struct {
	db SQLExecutor
}

// LockPlayers takes transaction-scoped advisory locks in a stable order so
// concurrent writers touching overlapping players cannot deadlock.
func (l *advisoryLocker) LockPlayers(ctx context.Context, playerIDs ...uuid.UUID) error {
	for _, key := range PlayerLockKeys(playerIDs...) {
		if _, err := l.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
	}
	return nil
}

// PlayerLockKeys returns the distinct lock keys for the players, sorted.
func PlayerLockKeys(playerIDs ...uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(playerIDs))
	keys := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, "player:"+id.String())
	}
	sort.Strings(keys)
	return keys
}
