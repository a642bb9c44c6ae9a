package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/glossary-be/internal/models"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ResourceHandler handles HTTP requests for term resources.
type ResourceHandler struct {
	service services.ResourceServiceProvider
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(service services.ResourceServiceProvider) *ResourceHandler {
	return &ResourceHandler{service: service}
}

// ResourcePayload carries the fields of a term resource.
type ResourcePayload struct {
	ResourceID int64  `json:"resourceid"`
	TermID     int64  `json:"termid" validate:"gt=0"`
	Link       string `json:"link" validate:"required,max=2048"`
	LinkType   string `json:"linktype" validate:"required,oneof=video web"`
	Language   string `json:"language" validate:"max=64"`
}

// ResourceIDPayload selects a single resource.
type ResourceIDPayload struct {
	ResourceID int64 `json:"resourceid" validate:"gt=0"`
}

// GetForTerm lists the resources of the term named in the body.
func (h *ResourceHandler) GetForTerm(w http.ResponseWriter, r *http.Request) {
	var payload TermIDPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resources, err := h.service.GetResourcesForTerm(r.Context(), payload.TermID)
	if err != nil {
		log.Error().Err(err).Int64("term_id", payload.TermID).Msg("Failed to retrieve term resources")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve term resources")
		return
	}
	respondJSON(w, http.StatusOK, resources)
}

// Create attaches a resource to a term.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload ResourcePayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.CreateResource(r.Context(), payload.toModel(), actorID(r))
	if err != nil {
		h.writeMutationError(w, err, payload.ResourceID, "create")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Term resource added", "id": id})
}

// Update replaces an existing resource.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload ResourcePayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.ResourceID <= 0 {
		respondError(w, http.StatusBadRequest, "resourceid is required")
		return
	}

	if err := h.service.UpdateResource(r.Context(), payload.toModel(), actorID(r)); err != nil {
		h.writeMutationError(w, err, payload.ResourceID, "update")
		return
	}
	respondMessage(w, http.StatusOK, "Term resource updated")
}

// Delete removes a resource.
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var payload ResourceIDPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteResource(r.Context(), payload.ResourceID, actorID(r)); err != nil {
		h.writeMutationError(w, err, payload.ResourceID, "delete")
		return
	}
	respondMessage(w, http.StatusOK, "Term resource deleted")
}

func (h *ResourceHandler) writeMutationError(w http.ResponseWriter, err error, id int64, op string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondMessage(w, http.StatusNotFound, notFoundMessage("term resource", id))
	case errors.Is(err, services.ErrInvalidReference):
		respondError(w, http.StatusBadRequest, "termid does not match a term")
	default:
		log.Error().Err(err).Int64("resource_id", id).Str("op", op).Msg("Term resource mutation failed")
		respondError(w, http.StatusInternalServerError, "Failed to "+op+" term resource")
	}
}

func (p ResourcePayload) toModel() models.Resource {
	return models.Resource{
		ID:       p.ResourceID,
		TermID:   p.TermID,
		Link:     p.Link,
		LinkType: p.LinkType,
		Language: p.Language,
	}
}
