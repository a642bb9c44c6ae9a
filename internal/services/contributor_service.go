package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/database"
	"github.com/isdelr/glossary-be/internal/models"
)

// ContributorServiceProvider defines the interface for contributor services.
type ContributorServiceProvider interface {
	CredentialStore
	GetContributorByID(ctx context.Context, id int64) (models.Contributor, error)
	GetAllContributors(ctx context.Context) ([]models.Contributor, error)
}

// ContributorService stores contributor accounts and their password hashes.
type ContributorService struct {
	db *sql.DB
}

// NewContributorService creates a new ContributorService.
func NewContributorService(db *sql.DB) *ContributorService {
	return &ContributorService{db: db}
}

// GetByEmail retrieves a contributor by email, ignoring case, including the
// password hash. Returns ErrNotFound when no account uses that email.
func (s *ContributorService) GetByEmail(ctx context.Context, email string) (models.Contributor, error) {
	var c models.Contributor
	var createdAt string
	row := s.db.QueryRowContext(ctx,
		"SELECT id, contributor_name, email, region, password, created_at FROM contributors WHERE email = ? COLLATE NOCASE", email)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Region, &c.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contributor{}, ErrNotFound
		}
		return models.Contributor{}, fmt.Errorf("get contributor by email: %w", err)
	}
	c.CreatedAt, _ = database.ParseTime(createdAt)
	return c, nil
}

// Create inserts a contributor with an already hashed password in a single
// statement. An email already taken in any letter case yields
// auth.ErrDuplicateAccount.
func (s *ContributorService) Create(ctx context.Context, c models.Contributor) (int64, error) {
	if c.PasswordHash == "" {
		return 0, errors.New("create contributor: password hash is required")
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO contributors (contributor_name, region, email, password) VALUES (?, ?, ?, ?)",
		c.Name, c.Region, c.Email, c.PasswordHash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, auth.ErrDuplicateAccount
		}
		return 0, fmt.Errorf("create contributor: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create contributor: %w", err)
	}
	return id, nil
}

// GetContributorByID retrieves a single contributor without the password hash.
func (s *ContributorService) GetContributorByID(ctx context.Context, id int64) (models.Contributor, error) {
	var c models.Contributor
	var createdAt string
	row := s.db.QueryRowContext(ctx,
		"SELECT id, contributor_name, email, region, created_at FROM contributors WHERE id = ?", id)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Region, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contributor{}, ErrNotFound
		}
		return models.Contributor{}, fmt.Errorf("get contributor %d: %w", id, err)
	}
	c.CreatedAt, _ = database.ParseTime(createdAt)
	return c, nil
}

// GetAllContributors lists every contributor, never selecting the hash column.
func (s *ContributorService) GetAllContributors(ctx context.Context) ([]models.Contributor, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, contributor_name, email, region, created_at FROM contributors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	defer rows.Close()

	contributors := []models.Contributor{}
	for rows.Next() {
		var c models.Contributor
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Region, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		c.CreatedAt, _ = database.ParseTime(createdAt)
		contributors = append(contributors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributors: %w", err)
	}
	return contributors, nil
}
