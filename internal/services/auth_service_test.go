package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc          *AuthService
	contributors *ContributorService
	events       *EventService
	tokens       *auth.TokenService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	db := setupTestDB(t)

	tokens, err := auth.NewTokenService([]byte("test-secret"), auth.DefaultTokenTTL)
	require.NoError(t, err)

	contributors := NewContributorService(db)
	events := NewEventService(db)
	svc, err := NewAuthService(contributors, auth.NewHasher(bcrypt.MinCost), tokens, events)
	require.NoError(t, err)

	return authFixture{svc: svc, contributors: contributors, events: events, tokens: tokens}
}

func TestAuthService_RegisterLoginScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	id, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Region: "eu", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	res, err := f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ContributorID)
	identity, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), identity.ContributorID)
	assert.Equal(t, "a@x.com", identity.Email)

	res, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredential)
	assert.Empty(t, res.Token)

	res, err = f.svc.Login(ctx, "b@x.com", "p1")
	assert.ErrorIs(t, err, auth.ErrUnknownAccount)
	assert.Empty(t, res.Token)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "A2", Email: "a@x.com", Password: "p2"})
	assert.ErrorIs(t, err, auth.ErrDuplicateAccount)

	// The first password still works after the rejected duplicate.
	_, err = f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
}

func TestAuthService_EmailCaseDoesNotSplitAccounts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	id, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "A@x.com", Password: "p1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "A2", Email: "a@x.com", Password: "p2"})
	assert.ErrorIs(t, err, auth.ErrDuplicateAccount)

	res, err := f.svc.Login(ctx, "a@X.COM", "p1")
	require.NoError(t, err)
	assert.Equal(t, id, res.ContributorID)

	_, err = f.svc.Login(ctx, "a@x.com", "p2")
	assert.ErrorIs(t, err, auth.ErrBadCredential)
}

func TestAuthService_StoresOnlyHash(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "plain-secret"})
	require.NoError(t, err)

	stored, err := f.contributors.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "plain-secret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("plain-secret")))
}

func TestAuthService_CorruptStoredHash(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.contributors.Create(ctx, models.Contributor{Name: "A", Email: "a@x.com", PasswordHash: "not-a-bcrypt-hash"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "a@x.com", "anything")
	assert.ErrorIs(t, err, auth.ErrCredentialFormat)
	assert.False(t, errors.Is(err, auth.ErrBadCredential))
}

func TestAuthService_RegisterRejectsOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: string(make([]byte, 80))})
	assert.ErrorIs(t, err, auth.ErrPasswordTooLong)

	_, err = f.contributors.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_RegisterCancelledLeavesNoAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "p1"})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = f.contributors.GetByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_RecordsEvents(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "p1")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "nope")
	require.Error(t, err)

	events, err := f.events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
		assert.NotContains(t, e.Message, "p1")
		assert.NotContains(t, e.Message, "nope")
	}
	assert.ElementsMatch(t, []string{EventRegister, EventLoginSuccess, EventLoginFailure}, types)
}

func TestAuthService_EnsureContributor(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	input := RegisterInput{Name: "admin", Email: "root@x.com", Password: "changeme"}

	id, created, err := f.svc.EnsureContributor(ctx, input)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.svc.EnsureContributor(ctx, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)
}

// stubStore lets the flow be exercised without SQL.
type stubStore struct {
	contributor models.Contributor
	getErr      error
	createErr   error
	created     []models.Contributor
}

func (s *stubStore) GetByEmail(_ context.Context, _ string) (models.Contributor, error) {
	return s.contributor, s.getErr
}

func (s *stubStore) Create(_ context.Context, c models.Contributor) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, c)
	return int64(len(s.created)), nil
}

func TestAuthService_StoreFailureIsNotUnknownAccount(t *testing.T) {
	storeErr := errors.New("database is locked")
	svc, err := NewAuthService(&stubStore{getErr: storeErr}, auth.NewHasher(bcrypt.MinCost), nil, nil)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "a@x.com", "p1")
	assert.ErrorIs(t, err, storeErr)
	assert.False(t, errors.Is(err, auth.ErrUnknownAccount))
}

func TestAuthService_NoTokenWithoutVerifiedMatch(t *testing.T) {
	hasher := auth.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("right")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService([]byte("k"), time.Minute)
	require.NoError(t, err)
	store := &stubStore{contributor: models.Contributor{ID: 5, Email: "a@x.com", PasswordHash: hash}}
	svc, err := NewAuthService(store, hasher, tokens, nil)
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredential)
	assert.Empty(t, res.Token)

	res, err = svc.Login(context.Background(), "a@x.com", "right")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, int64(5), res.ContributorID)
}

func TestAuthService_RegisterPassesOnlyHashToStore(t *testing.T) {
	store := &stubStore{}
	svc, err := NewAuthService(store, auth.NewHasher(bcrypt.MinCost), nil, nil)
	require.NoError(t, err)

	id, err := svc.Register(context.Background(), RegisterInput{Name: "N", Email: "n@x.com", Region: "us", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	require.Len(t, store.created, 1)
	assert.NotEqual(t, "pw", store.created[0].PasswordHash)
	assert.Equal(t, "us", store.created[0].Region)
}

func TestAuthService_FailureEventsOmitSubmittedEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	// A password typed into the email field must not be persisted.
	_, err = f.svc.Login(ctx, "hunter2-oops", "p1")
	assert.ErrorIs(t, err, auth.ErrUnknownAccount)
	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredential)

	events, err := f.events.GetRecentEvents(ctx, 10)
	require.NoError(t, err)
	var failures []string
	for _, e := range events {
		if e.Type != EventLoginFailure {
			continue
		}
		failures = append(failures, e.Message)
		assert.NotContains(t, e.Message, "hunter2-oops")
		assert.NotContains(t, e.Message, "a@x.com")
	}
	assert.ElementsMatch(t, []string{
		"Login failed: unknown account",
		"Login failed for contributor 1: bad credential",
	}, failures)
}
