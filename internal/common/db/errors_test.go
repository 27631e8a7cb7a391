package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
)

func TestExtractTableFromOperation(t *testing.T) {
	tests := map[string]string{
		"create account":     "users",
		"find user by email": "users",
		"update profile":     "users",
		"insert post":        "posts",
		"list feed":          "posts",
		"something else":     "unknown",
	}
	for op, want := range tests {
		if got := extractTableFromOperation(op); got != want {
			t.Errorf("extractTableFromOperation(%q) = %q, want %q", op, got, want)
		}
	}
}

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	constraint, ok := UniqueViolation(err)
	if !ok {
		t.Fatal("expected unique violation")
	}
	if constraint != "users_email_key" {
		t.Errorf("expected users_email_key, got %s", constraint)
	}

	if _, ok := UniqueViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Error("foreign key violation must not be reported as unique")
	}
	if _, ok := UniqueViolation(errors.New("boom")); ok {
		t.Error("plain error must not be reported as unique")
	}
}

func TestHandleQueryError(t *testing.T) {
	notFound := errors.New("not found")

	if err := HandleQueryError(nil, notFound, "find user by id", time.Now()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	if err := HandleQueryError(pgx.ErrNoRows, notFound, "find user by id", time.Now()); !errors.Is(err, notFound) {
		t.Errorf("expected not found, got %v", err)
	}

	cause := errors.New("connection reset")
	err := HandleQueryError(cause, notFound, "find user by id", time.Now())
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
