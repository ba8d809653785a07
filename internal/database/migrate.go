package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createProfilesSQL = `
CREATE TABLE IF NOT EXISTS profiles (
    id          UUID PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    full_name   TEXT,
    avatar_url  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createEventsSQL = `
CREATE TABLE IF NOT EXISTS events (
    id             UUID PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT,
    date           DATE NOT NULL,
    time           TIME NOT NULL,
    location_type  TEXT NOT NULL CHECK (location_type IN ('online', 'in_person')),
    location       TEXT,
    link           TEXT,
    city           TEXT,
    category       TEXT NOT NULL DEFAULT 'other',
    cover_image    TEXT,
    tickets        JSONB NOT NULL DEFAULT '[]',
    slug           TEXT NOT NULL UNIQUE,
    creator_id     UUID NOT NULL REFERENCES profiles(id),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createRegistrationsSQL = `
CREATE TABLE IF NOT EXISTS registrations (
    id          UUID PRIMARY KEY,
    event_id    UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    user_id     UUID NOT NULL REFERENCES profiles(id),
    ticket_id   TEXT,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    phone       TEXT NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (event_id, user_id)
);`

const createOTPCodesSQL = `
CREATE TABLE IF NOT EXISTS otp_codes (
    email       TEXT PRIMARY KEY,
    code        TEXT NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);`

// Migrate creates the schema if it does not exist yet. The ON DELETE CASCADE
// on registrations.event_id is what makes event deletion take its
// registrations with it; application code never deletes them explicitly.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		createProfilesSQL,
		createEventsSQL,
		createRegistrationsSQL,
		createOTPCodesSQL,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
