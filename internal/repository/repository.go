// Package repository implements all database queries for the event platform.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when a (event, user) pair hits the
// registrations unique constraint. Callers treat it as "already registered",
// never as a generic failure, and never retry it.
var ErrAlreadyRegistered = errors.New("already registered for this event")

// ErrSlugTaken is returned when an event slug collides with an existing one.
var ErrSlugTaken = errors.New("slug already in use")

// uniqueViolation is the PostgreSQL error code for unique-constraint hits.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
