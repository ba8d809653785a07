package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hatch-ir/hatch/internal/model"
)

// ProfileRepository handles persistence for user profiles.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, COALESCE(full_name, ''),
	COALESCE(avatar_url, ''), created_at, updated_at`

// GetByID returns a profile or ErrNotFound.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail returns a profile by email (lowercased) or ErrNotFound.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *ProfileRepository) getBy(ctx context.Context, column, value string) (*model.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE `+column+` = $1`, value)
	var p model.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Create inserts a new profile with a generated UUID. Profiles are created
// lazily: on first code request or first verification with a supplied name.
func (r *ProfileRepository) Create(ctx context.Context, email, fullName string) (*model.Profile, error) {
	p := &model.Profile{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		FullName:  fullName,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)`,
		p.ID, p.Email, p.FullName, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// Upsert creates the profile row or refreshes its full name. Email is never
// changed on conflict: it is immutable once set.
func (r *ProfileRepository) Upsert(ctx context.Context, id, email, fullName string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (id, email, full_name, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, ''), now(), now())
		 ON CONFLICT (id) DO UPDATE
		 SET full_name = COALESCE(NULLIF(EXCLUDED.full_name, ''), profiles.full_name),
		     updated_at = now()`,
		id, strings.ToLower(email), fullName,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Update changes the mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, id string, in model.ProfileInput) (*model.Profile, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE profiles SET full_name = NULLIF($2, ''),
		   avatar_url = NULLIF($3, ''), updated_at = now()
		 WHERE id = $1`,
		id, in.FullName, in.AvatarURL,
	)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
