package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict marks a uniqueness violation on the item name. Callers match it
// with errors.Is.
var ErrConflict = errors.New("item name already exists")

const uniqueViolationCode = "23505"

// StoreError wraps any backend failure that is not a uniqueness conflict. The
// underlying driver message stays available for logging via Unwrap; the HTTP
// boundary replaces it with a generic label before responding.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// translateError maps backend failures onto the repository error taxonomy.
func translateError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return &StoreError{Op: op, Err: err}
}
