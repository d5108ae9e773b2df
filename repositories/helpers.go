package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	pqStringTooLong       = "22001"
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

// Column widths of the VARCHAR columns, in characters.
const (
	MaxPlayerNameLength     = 100
	MaxEmailLength          = 100
	MaxPreferredCueLength   = 100
	MaxTournamentNameLength = 100
	MaxLocationLength       = 200
)

var ErrValueTooLong = errors.New("value too long for column")

// TooLong reports whether s has more than limit characters.
func TooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

// TooLongPtr is TooLong for optional columns; nil always fits.
func TooLongPtr(s *string, limit int) bool {
	return s != nil && TooLong(*s, limit)
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// constraintViolation returns the pq error code and constraint name, if err is a pq error.
func constraintViolation(err error) (code, constraint string, ok bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", "", false
	}
	return string(pqErr.Code), pqErr.Constraint, true
}

// whereBuilder collects AND-ed predicates. Every "?" in a clause is bound to
// that clause's single argument.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *whereBuilder) add(clause string, arg interface{}) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(b.args))))
}

func (b *whereBuilder) String() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// likePattern lowercases the term and escapes LIKE wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
