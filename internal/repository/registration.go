package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hatch-ir/hatch/internal/model"
)

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, event_id, user_id, ticket_id,
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(phone, ''),
	status, created_at`

// Insert creates one registration row. A unique-constraint hit on
// (event_id, user_id) comes back as ErrAlreadyRegistered so callers can
// distinguish the anticipated duplicate from a real failure.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	reg.ID = uuid.New().String()
	reg.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO registrations (id, event_id, user_id, ticket_id, first_name,
		   last_name, phone, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		reg.ID, reg.EventID, reg.UserID, reg.TicketID, reg.FirstName,
		reg.LastName, reg.Phone, reg.Status, reg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return reg, nil
}

// GetByEventAndUser returns a user's registration for an event, or ErrNotFound.
func (r *RegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// ListByEvent returns all registrations for an event, newest first,
// optionally filtered by status.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string, status model.RegistrationStatus) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE event_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC`,
		eventID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

// ListByUser returns all of a user's registrations, newest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by user: %w", err)
	}
	defer rows.Close()
	return scanRegistrations(rows)
}

// CountByStatus tallies an event's registrations per status.
func (r *RegistrationRepository) CountByStatus(ctx context.Context, eventID string) (model.StatusCounts, error) {
	var c model.StatusCounts
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'approved'),
		        COUNT(*) FILTER (WHERE status = 'pending'),
		        COUNT(*) FILTER (WHERE status = 'rejected')
		 FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&c.All, &c.Approved, &c.Pending, &c.Rejected)
	if err != nil {
		return c, fmt.Errorf("count registrations: %w", err)
	}
	return c, nil
}

// UpdateStatus sets a registration's moderation status.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a registration by id.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByEventAndUser removes a user's own registration (self-service
// cancellation).
func (r *RegistrationRepository) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM registrations WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.TicketID,
		&reg.FirstName, &reg.LastName, &reg.Phone, &reg.Status, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanRegistrations(rows pgx.Rows) ([]model.Registration, error) {
	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}
