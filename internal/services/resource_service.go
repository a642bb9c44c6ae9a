package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/glossary-be/internal/database"
	"github.com/isdelr/glossary-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ResourceServiceProvider defines the interface for term resource services.
type ResourceServiceProvider interface {
	GetResourcesForTerm(ctx context.Context, termID int64) ([]models.Resource, error)
	CreateResource(ctx context.Context, resource models.Resource, actor *int64) (int64, error)
	UpdateResource(ctx context.Context, resource models.Resource, actor *int64) error
	DeleteResource(ctx context.Context, id int64, actor *int64) error
}

// ResourceService provides business logic for the links attached to terms.
type ResourceService struct {
	db     *sql.DB
	hub    Broadcaster
	events EventServiceProvider
}

// NewResourceService creates a new ResourceService. hub and events may be nil.
func NewResourceService(db *sql.DB, hub Broadcaster, events EventServiceProvider) *ResourceService {
	return &ResourceService{db: db, hub: hub, events: events}
}

// GetResourcesForTerm lists the resources attached to a term.
func (s *ResourceService) GetResourcesForTerm(ctx context.Context, termID int64) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, termid, link, linktype, language FROM term_resources WHERE termid = ? ORDER BY id", termID)
	if err != nil {
		return nil, fmt.Errorf("list resources for term %d: %w", termID, err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var r models.Resource
		if err := rows.Scan(&r.ID, &r.TermID, &r.Link, &r.LinkType, &r.Language); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}
	return resources, nil
}

// CreateResource attaches a resource to an existing term.
func (s *ResourceService) CreateResource(ctx context.Context, resource models.Resource, actor *int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO term_resources (termid, link, linktype, language) VALUES (?, ?, ?, ?)",
		resource.TermID, resource.Link, resource.LinkType, resource.Language)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return 0, ErrInvalidReference
		}
		return 0, fmt.Errorf("create resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create resource: %w", err)
	}

	resource.ID = id
	s.changed(ctx, EventResourceCreate, fmt.Sprintf("Resource %d added to term %d", id, resource.TermID), resource, actor)
	return id, nil
}

// UpdateResource replaces every field of an existing resource.
func (s *ResourceService) UpdateResource(ctx context.Context, resource models.Resource, actor *int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE term_resources SET termid = ?, link = ?, linktype = ?, language = ? WHERE id = ?",
		resource.TermID, resource.Link, resource.LinkType, resource.Language, resource.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrInvalidReference
		}
		return fmt.Errorf("update resource %d: %w", resource.ID, err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	s.changed(ctx, EventResourceUpdate, fmt.Sprintf("Resource %d updated", resource.ID), resource, actor)
	return nil
}

// DeleteResource removes a resource.
func (s *ResourceService) DeleteResource(ctx context.Context, id int64, actor *int64) error {
	var termID int64
	err := s.db.QueryRowContext(ctx, "DELETE FROM term_resources WHERE id = ? RETURNING termid", id).Scan(&termID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete resource %d: %w", id, err)
	}

	s.changed(ctx, EventResourceDelete, fmt.Sprintf("Resource %d deleted", id), models.Resource{ID: id, TermID: termID}, actor)
	return nil
}

func (s *ResourceService) changed(ctx context.Context, eventType, message string, resource models.Resource, actor *int64) {
	publish(s.hub, TermTopic(resource.TermID), eventType, resource)
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(context.WithoutCancel(ctx), eventType, "info", message, actor); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
