package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hatch-ir/hatch/internal/auth"
	"github.com/hatch-ir/hatch/internal/mailer"
	"github.com/hatch-ir/hatch/internal/model"
	"github.com/hatch-ir/hatch/internal/repository"
)

// codeTTL is how long a one-time code stays valid.
const codeTTL = 5 * time.Minute

// ErrInvalidCode is returned when a submitted one-time code does not match.
var ErrInvalidCode = errors.New("invalid verification code")

// ErrCodeExpired is returned when the code matched but is past its expiry.
var ErrCodeExpired = errors.New("verification code expired")

type profileStore interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	Create(ctx context.Context, email, fullName string) (*model.Profile, error)
	Upsert(ctx context.Context, id, email, fullName string) error
	Update(ctx context.Context, id string, in model.ProfileInput) (*model.Profile, error)
}

type codeStore interface {
	Save(ctx context.Context, email, code string, expiresAt time.Time) error
	Lookup(ctx context.Context, email, code string) (time.Time, error)
	Delete(ctx context.Context, email string) error
}

// AuthService implements passwordless email-code authentication. It is the
// identity provider the registration wizard talks to.
type AuthService struct {
	profiles profileStore
	codes    codeStore
	mailer   mailer.Mailer
	tokens   *auth.Tokens
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(profiles profileStore, codes codeStore, m mailer.Mailer, tokens *auth.Tokens) *AuthService {
	return &AuthService{
		profiles: profiles,
		codes:    codes,
		mailer:   m,
		tokens:   tokens,
		now:      time.Now,
	}
}

// RequestCode creates the account lazily if the email is unknown, stores a
// fresh 6-digit code (replacing any pending one) and emails it.
func (s *AuthService) RequestCode(ctx context.Context, email, fullName string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !isValidEmail(email) {
		return fmt.Errorf("email is not a valid address")
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("look up profile: %w", err)
		}
		if _, err := s.profiles.Create(ctx, email, fullName); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		slog.Info("profile created for first sign-in", "email", email)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, email, code, s.now().Add(codeTTL)); err != nil {
		return err
	}
	return s.mailer.SendCode(ctx, email, code)
}

// VerifyCode checks a submitted code and returns the account's user id.
// Used codes are deleted so they cannot be replayed.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	expiresAt, err := s.codes.Lookup(ctx, email, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", err
	}
	if s.now().After(expiresAt) {
		return "", ErrCodeExpired
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		// The login still succeeds; the code just lives until expiry.
		slog.Error("failed to delete used code", "email", email, "error", err)
	}

	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("look up profile after verification: %w", err)
	}
	return profile.ID, nil
}

// CurrentUser returns the identity carried by ctx. The wizard consults it
// fresh immediately before every commit.
func (s *AuthService) CurrentUser(ctx context.Context) (string, bool) {
	return auth.UserFrom(ctx)
}

// UpsertProfile records the attendee's name against a verified account.
func (s *AuthService) UpsertProfile(ctx context.Context, userID, email, fullName string) error {
	return s.profiles.Upsert(ctx, userID, email, fullName)
}

// IssueToken signs a session token for a verified user id.
func (s *AuthService) IssueToken(ctx context.Context, userID string) (string, *model.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("load profile: %w", err)
	}
	token, err := s.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return "", nil, err
	}
	return token, profile, nil
}

// Profile returns a user's profile.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// UpdateProfile changes the mutable profile fields. Email stays as it is.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in model.ProfileInput) (*model.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return s.profiles.Update(ctx, userID, in)
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
