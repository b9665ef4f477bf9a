package storage

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateErrorMapsUniqueViolationToConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "item_name_unique"}

	err := translateError("insert item", pgErr)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestTranslateErrorWrapsOtherFailures(t *testing.T) {
	cause := errors.New("connection reset")

	err := translateError("list items", cause)
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if storeErr.Op != "list items" {
		t.Fatalf("expected op to be preserved, got %q", storeErr.Op)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected the driver error to stay reachable through Unwrap")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("non-unique failures must not read as conflicts")
	}
}

func TestTranslateErrorIgnoresOtherPostgresCodes(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42P01"}

	err := translateError("list items", pgErr)
	if errors.Is(err, ErrConflict) {
		t.Fatal("only 23505 maps to ErrConflict")
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}
