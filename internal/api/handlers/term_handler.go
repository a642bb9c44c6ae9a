package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/glossary-be/internal/models"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TermHandler handles HTTP requests for glossary terms.
type TermHandler struct {
	service services.TermServiceProvider
}

// NewTermHandler creates a new TermHandler.
func NewTermHandler(service services.TermServiceProvider) *TermHandler {
	return &TermHandler{service: service}
}

// TermIDPayload selects a single term.
type TermIDPayload struct {
	TermID int64 `json:"termid" validate:"gt=0"`
}

// TermPayload carries the editable fields of a term.
type TermPayload struct {
	TermID        int64  `json:"termid"`
	Term          string `json:"term" validate:"required,max=255"`
	Definition    string `json:"definition" validate:"required"`
	ContributorID *int64 `json:"contributorId"`
}

// GetAll lists every term.
func (h *TermHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	terms, err := h.service.GetAllTerms(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve terms")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve terms")
		return
	}
	respondJSON(w, http.StatusOK, terms)
}

// Get returns the term named in the body.
func (h *TermHandler) Get(w http.ResponseWriter, r *http.Request) {
	var payload TermIDPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	term, err := h.service.GetTerm(r.Context(), payload.TermID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, notFoundMessage("term", payload.TermID))
			return
		}
		log.Error().Err(err).Int64("term_id", payload.TermID).Msg("Failed to retrieve term")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve term")
		return
	}
	respondJSON(w, http.StatusOK, term)
}

// Create adds a term. The contributor defaults to the caller.
func (h *TermHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload TermPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	term := payload.toModel(r)
	id, err := h.service.CreateTerm(r.Context(), term)
	if err != nil {
		h.writeMutationError(w, err, term.ID, "create")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Term added", "id": id})
}

// Update replaces an existing term.
func (h *TermHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload TermPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.TermID <= 0 {
		respondError(w, http.StatusBadRequest, "termid is required")
		return
	}

	term := payload.toModel(r)
	if err := h.service.UpdateTerm(r.Context(), term); err != nil {
		h.writeMutationError(w, err, term.ID, "update")
		return
	}
	respondMessage(w, http.StatusOK, "Term updated")
}

// Delete removes a term and its resources.
func (h *TermHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var payload TermIDPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteTerm(r.Context(), payload.TermID); err != nil {
		h.writeMutationError(w, err, payload.TermID, "delete")
		return
	}
	respondMessage(w, http.StatusOK, "Term deleted")
}

func (h *TermHandler) writeMutationError(w http.ResponseWriter, err error, id int64, op string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondMessage(w, http.StatusNotFound, notFoundMessage("term", id))
	case errors.Is(err, services.ErrInvalidReference):
		respondError(w, http.StatusBadRequest, "contributorId does not match a contributor")
	default:
		log.Error().Err(err).Int64("term_id", id).Str("op", op).Msg("Term mutation failed")
		respondError(w, http.StatusInternalServerError, "Failed to "+op+" term")
	}
}

func (p TermPayload) toModel(r *http.Request) models.Term {
	contributorID := p.ContributorID
	if contributorID == nil {
		contributorID = actorID(r)
	}
	return models.Term{
		ID:            p.TermID,
		Term:          p.Term,
		Definition:    p.Definition,
		ContributorID: contributorID,
	}
}
