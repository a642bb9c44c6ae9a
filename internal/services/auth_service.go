package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/models"
	"github.com/rs/zerolog/log"
)

// CredentialStore is the storage the login and registration flows depend on.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (models.Contributor, error)
	Create(ctx context.Context, c models.Contributor) (int64, error)
}

// AuthServiceProvider defines the interface for login and registration.
type AuthServiceProvider interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, input RegisterInput) (int64, error)
}

// LoginResult is what a successful login hands back to the caller.
type LoginResult struct {
	Token         string
	ContributorID int64
}

// RegisterInput carries the fields of a new contributor. Password is plaintext
// and is dropped after hashing.
type RegisterInput struct {
	Name     string
	Email    string
	Region   string
	Password string
}

// AuthService composes the credential store, the password hasher and the
// token issuer into the login and registration flows.
type AuthService struct {
	store  CredentialStore
	hasher *auth.Hasher
	tokens *auth.TokenService
	events EventServiceProvider

	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(store CredentialStore, hasher *auth.Hasher, tokens *auth.TokenService, events EventServiceProvider) (*AuthService, error) {
	dummy, err := hasher.Hash("glossary-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		events:    events,
		dummyHash: dummy,
	}, nil
}

// Login looks the contributor up by email, verifies the password against the
// stored hash and only then issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	contributor, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			s.record(ctx, EventLoginFailure, "warn", "Login failed: unknown account", nil)
			return LoginResult{}, auth.ErrUnknownAccount
		}
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(password, contributor.PasswordHash)
	if err != nil {
		log.Error().Err(err).Int64("contributor_id", contributor.ID).Msg("Stored credential hash is corrupt")
		return LoginResult{}, err
	}
	if !ok {
		s.record(ctx, EventLoginFailure, "warn", fmt.Sprintf("Login failed for contributor %d: bad credential", contributor.ID), &contributor.ID)
		return LoginResult{}, auth.ErrBadCredential
	}

	if s.tokens == nil {
		return LoginResult{}, fmt.Errorf("login: %w", auth.ErrMissingSecret)
	}
	token, err := s.tokens.Issue(auth.Identity{ContributorID: contributor.ID, Email: contributor.Email})
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	log.Debug().Int64("contributor_id", contributor.ID).Msg("Contributor authenticated")
	s.record(ctx, EventLoginSuccess, "info", fmt.Sprintf("Contributor %d logged in", contributor.ID), &contributor.ID)
	return LoginResult{Token: token, ContributorID: contributor.ID}, nil
}

// Register hashes the password and persists the contributor. Uniqueness of
// the email is left to the store, which reports auth.ErrDuplicateAccount.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return 0, err
	}

	// Hashing is slow; do not start the write for a request that has gone away.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, models.Contributor{
		Name:         input.Name,
		Email:        input.Email,
		Region:       input.Region,
		PasswordHash: hash,
	})
	if err != nil {
		return 0, err
	}

	s.record(ctx, EventRegister, "info", fmt.Sprintf("Contributor %d registered", id), &id)
	return id, nil
}

// EnsureContributor registers input unless its email is already taken.
// It reports whether a new account was created.
func (s *AuthService) EnsureContributor(ctx context.Context, input RegisterInput) (int64, bool, error) {
	existing, err := s.store.GetByEmail(ctx, input.Email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, false, err
	}

	id, err := s.Register(ctx, input)
	if errors.Is(err, auth.ErrDuplicateAccount) {
		existing, err = s.store.GetByEmail(ctx, input.Email)
		if err != nil {
			return 0, false, err
		}
		return existing.ID, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *AuthService) record(ctx context.Context, eventType, level, message string, contributorID *int64) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(context.WithoutCancel(ctx), eventType, level, message, contributorID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
