package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/glossary-be/internal/database"
	"github.com/isdelr/glossary-be/internal/models"
	"github.com/rs/zerolog/log"
)

// TermServiceProvider defines the interface for term services.
type TermServiceProvider interface {
	GetAllTerms(ctx context.Context) ([]models.Term, error)
	GetTerm(ctx context.Context, id int64) (models.Term, error)
	CreateTerm(ctx context.Context, term models.Term) (int64, error)
	UpdateTerm(ctx context.Context, term models.Term) error
	DeleteTerm(ctx context.Context, id int64) error
}

// TermService provides business logic for glossary terms.
type TermService struct {
	db     *sql.DB
	hub    Broadcaster
	events EventServiceProvider
}

// NewTermService creates a new TermService. hub and events may be nil.
func NewTermService(db *sql.DB, hub Broadcaster, events EventServiceProvider) *TermService {
	return &TermService{db: db, hub: hub, events: events}
}

// GetAllTerms lists every term.
func (s *TermService) GetAllTerms(ctx context.Context) ([]models.Term, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, term, definition, contributor_id FROM terms ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	defer rows.Close()

	terms := []models.Term{}
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}
	return terms, nil
}

// GetTerm retrieves a single term by its ID.
func (s *TermService) GetTerm(ctx context.Context, id int64) (models.Term, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, term, definition, contributor_id FROM terms WHERE id = ?", id)
	term, err := scanTerm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Term{}, ErrNotFound
	}
	return term, err
}

// CreateTerm inserts a term and returns its ID.
func (s *TermService) CreateTerm(ctx context.Context, term models.Term) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO terms (term, definition, contributor_id) VALUES (?, ?, ?)",
		term.Term, term.Definition, term.ContributorID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, ErrInvalidReference
		}
		return 0, fmt.Errorf("create term: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create term: %w", err)
	}

	term.ID = id
	s.changed(ctx, EventTermCreate, fmt.Sprintf("Term %d added", id), term)
	return id, nil
}

// UpdateTerm replaces the text, definition and contributor of an existing term.
func (s *TermService) UpdateTerm(ctx context.Context, term models.Term) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE terms SET term = ?, definition = ?, contributor_id = ? WHERE id = ?",
		term.Term, term.Definition, term.ContributorID, term.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("update term %d: %w", term.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	s.changed(ctx, EventTermUpdate, fmt.Sprintf("Term %d updated", term.ID), term)
	return nil
}

// DeleteTerm removes a term; its resources go with it.
func (s *TermService) DeleteTerm(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM terms WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete term %d: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	s.changed(ctx, EventTermDelete, fmt.Sprintf("Term %d deleted", id), models.Term{ID: id})
	return nil
}

func (s *TermService) changed(ctx context.Context, eventType, message string, term models.Term) {
	publish(s.hub, TermTopic(term.ID), eventType, term)
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(context.WithoutCancel(ctx), eventType, "info", message, term.ContributorID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTerm(row rowScanner) (models.Term, error) {
	var term models.Term
	var contributorID sql.NullInt64
	if err := row.Scan(&term.ID, &term.Term, &term.Definition, &contributorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Term{}, err
		}
		return models.Term{}, fmt.Errorf("scan term: %w", err)
	}
	if contributorID.Valid {
		id := contributorID.Int64
		term.ContributorID = &id
	}
	return term, nil
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
