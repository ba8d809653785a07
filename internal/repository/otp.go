package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OTPRepository stores pending one-time codes, one per email. Requesting a
// new code for the same email replaces the previous one, which is how
// resends work.
type OTPRepository struct {
	db *pgxpool.Pool
}

// NewOTPRepository constructs an OTPRepository.
func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{db: db}
}

// Save stores or replaces the pending code for an email.
func (r *OTPRepository) Save(ctx context.Context, email, code string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO otp_codes (email, code, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`,
		strings.ToLower(email), code, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// Lookup returns the expiry of the matching pending code, or ErrNotFound
// when the email has no pending code or the code does not match.
func (r *OTPRepository) Lookup(ctx context.Context, email, code string) (time.Time, error) {
	var expiresAt time.Time
	err := r.db.QueryRow(ctx,
		`SELECT expires_at FROM otp_codes WHERE email = $1 AND code = $2`,
		strings.ToLower(email), code,
	).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("lookup otp: %w", err)
	}
	return expiresAt, nil
}

// Delete removes the pending code for an email so it cannot be reused.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM otp_codes WHERE email = $1`, strings.ToLower(email)); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
