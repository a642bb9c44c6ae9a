package database

import (
	"context"
	"database/sql"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewInMemory(url.PathEscape(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Migrate(db), "second run must be a no-op")

	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('contributors', 'terms', 'term_resources', 'events')",
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestIsUniqueViolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const q = "INSERT INTO contributors (contributor_name, email, region, password) VALUES (?, ?, ?, ?)"
	_, err := db.ExecContext(ctx, q, "a", "a@x.com", "eu", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, q, "b", "a@x.com", "eu", "hash")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(nil))
}

func TestContributorEmailUniqueIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const q = "INSERT INTO contributors (contributor_name, email, region, password) VALUES (?, ?, ?, ?)"
	_, err := db.ExecContext(ctx, q, "a", "a@x.com", "eu", "hash")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, q, "b", "A@X.COM", "eu", "hash")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsForeignKeyViolation(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ExecContext(context.Background(),
		"INSERT INTO term_resources (termid, link, linktype, language) VALUES (?, ?, ?, ?)",
		999, "https://example.com", "web", "en")
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
}

func TestFormatAndParseTime(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("X", 3600))

	s := FormatTime(ts)
	assert.Equal(t, "2024-03-09 13:05:07", s)

	back, err := ParseTime(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(ts))

	rfc, err := ParseTime("2024-03-09T13:05:07Z")
	require.NoError(t, err)
	assert.True(t, rfc.Equal(ts))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}
