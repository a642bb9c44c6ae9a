package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/rs/zerolog/log"
)

// invalidLogin is returned for both an unknown email and a wrong password.
const invalidLogin = "Invalid email or password"

// ContributorHandler handles login, registration and contributor lookups.
type ContributorHandler struct {
	auth         services.AuthServiceProvider
	contributors services.ContributorServiceProvider
}

// NewContributorHandler creates a new ContributorHandler.
func NewContributorHandler(authSvc services.AuthServiceProvider, contributors services.ContributorServiceProvider) *ContributorHandler {
	return &ContributorHandler{auth: authSvc, contributors: contributors}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Region   string `json:"region" validate:"max=255"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a contributor and returns a bearer token.
func (h *ContributorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownAccount), errors.Is(err, auth.ErrBadCredential):
			log.Warn().Str("client", r.RemoteAddr).Msg("Failed authentication attempt")
			respondMessage(w, http.StatusUnauthorized, invalidLogin)
		default:
			log.Error().Err(err).Str("client", r.RemoteAddr).Msg("Login failed")
			respondError(w, http.StatusInternalServerError, "Failed to authenticate")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"auth":   result.Token,
		"userid": result.ContributorID,
	})
}

// Register creates a new contributor account.
func (h *ContributorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeRequest(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.auth.Register(r.Context(), services.RegisterInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Region:   payload.Region,
		Password: payload.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateAccount):
			respondError(w, http.StatusConflict, "A contributor with that email already exists")
		case errors.Is(err, auth.ErrPasswordTooLong):
			respondError(w, http.StatusBadRequest, "password must be at most 72 bytes")
		default:
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register contributor")
			respondError(w, http.StatusInternalServerError, "Failed to register contributor")
		}
		return
	}

	log.Info().Int64("contributor_id", id).Msg("Contributor registered")
	respondJSON(w, http.StatusCreated, map[string]any{"message": "Contributor added", "id": id})
}

// GetMe returns the contributor the request was authenticated as.
func (h *ContributorHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if identity.Anonymous {
		respondJSON(w, http.StatusOK, identity)
		return
	}

	contributor, err := h.contributors.GetContributorByID(r.Context(), identity.ContributorID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Contributor no longer exists")
			return
		}
		log.Error().Err(err).Int64("contributor_id", identity.ContributorID).Msg("Failed to retrieve contributor")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve contributor")
		return
	}
	respondJSON(w, http.StatusOK, contributor)
}

// GetAll lists every contributor.
func (h *ContributorHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	contributors, err := h.contributors.GetAllContributors(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve contributors")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve contributors")
		return
	}
	respondJSON(w, http.StatusOK, contributors)
}
