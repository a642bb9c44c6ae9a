package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/glossary-be/internal/database"
	"github.com/isdelr/glossary-be/internal/models"
)

// Event types written by the services.
const (
	EventLoginSuccess     = "contributor.login.success"
	EventLoginFailure     = "contributor.login.fail"
	EventRegister         = "contributor.register"
	EventTermCreate       = "term.create"
	EventTermUpdate       = "term.update"
	EventTermDelete       = "term.delete"
	EventResourceCreate   = "resource.create"
	EventResourceUpdate   = "resource.update"
	EventResourceDelete   = "resource.delete"
	EventRetentionCleanup = "system.events.prune"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, contributorID *int64) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}

// EventService records the audit trail.
type EventService struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, contributorID *int64) error {
	event := models.Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Level:         level,
		Message:       message,
		ContributorID: contributorID,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, contributor_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.ContributorID, database.FormatTime(s.now()))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, contributor_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var contributorID sql.NullInt64
		var createdAt string
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &contributorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if contributorID.Valid {
			id := contributorID.Int64
			event.ContributorID = &id
		}
		event.CreatedAt, _ = database.ParseTime(createdAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// PruneEvents deletes events created strictly before the cutoff and returns
// how many were removed.
func (s *EventService) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE created_at < ?", database.FormatTime(before))
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}
