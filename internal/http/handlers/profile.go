package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/internal/vaccines"
	"github.com/pediclinic/portal/pkg/logging"
)

// profileAPI is the slice of the clinic API the profile pages need.
type profileAPI interface {
	UpdateProfile(ctx context.Context, token string, update clinicapi.ProfileUpdate) (*clinicapi.User, error)
	AddChild(ctx context.Context, token string, child clinicapi.ChildInput) (*clinicapi.User, error)
	DeleteChild(ctx context.Context, token, childID string) (*clinicapi.User, error)
}

// ProfileHandler covers the parent profile: contact details, children
// and their vaccination cards. Every mutation stores the server's
// refreshed user snapshot back on the session.
type ProfileHandler struct {
	api      profileAPI
	store    *session.Store
	vaccines *vaccines.Service
	logger   *logging.Logger
}

// NewProfileHandler creates the profile handler.
func NewProfileHandler(api profileAPI, store *session.Store, vaccinesSvc *vaccines.Service, logger *logging.Logger) *ProfileHandler {
	if api == nil || store == nil || vaccinesSvc == nil {
		panic("handlers: profile requires API, store and vaccines service")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ProfileHandler{api: api, store: store, vaccines: vaccinesSvc, logger: logger}
}

// Update changes the parent's contact details.
// PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req clinicapi.ProfileUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.api.UpdateProfile(r.Context(), sess.Token, req)
	if err != nil {
		upstreamError(w, err)
		return
	}
	h.refreshSession(r, sess, user)
	writeJSON(w, http.StatusOK, user)
}

// AddChild registers a child on the parent's profile.
// POST /api/profile/children
func (h *ProfileHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req clinicapi.ChildInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		jsonError(w, "child name is required", http.StatusBadRequest)
		return
	}

	user, err := h.api.AddChild(r.Context(), sess.Token, req)
	if err != nil {
		upstreamError(w, err)
		return
	}
	h.refreshSession(r, sess, user)
	writeJSON(w, http.StatusCreated, user)
}

// DeleteChild removes a child profile.
// DELETE /api/profile/children/{id}
func (h *ProfileHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing child id", http.StatusBadRequest)
		return
	}

	user, err := h.api.DeleteChild(r.Context(), sess.Token, id)
	if err != nil {
		upstreamError(w, err)
		return
	}
	h.refreshSession(r, sess, user)
	writeJSON(w, http.StatusOK, user)
}

// Schedule returns the static immunization timetable; public.
// GET /api/vaccines/schedule
func (h *ProfileHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, vaccines.Schedule())
}

// VaccineCard renders one child's card from the session snapshot.
// GET /api/profile/children/{id}/vaccines
func (h *ProfileHandler) VaccineCard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")

	for _, child := range sess.User.Children {
		if child.ID == id {
			writeJSON(w, http.StatusOK, vaccines.BuildCard(child))
			return
		}
	}
	jsonError(w, "child not found", http.StatusNotFound)
}

// SetVaccine toggles a dose on a child's card.
// PUT /api/profile/children/{id}/vaccines
func (h *ProfileHandler) SetVaccine(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	var req struct {
		VaccineName string `json:"vaccineName"`
		Completed   bool   `json:"completed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.vaccines.SetStatus(r.Context(), sess.Token, id, req.VaccineName, req.Completed)
	if err != nil {
		if errors.Is(err, vaccines.ErrUnknownVaccine) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// refreshSession persists the server's user snapshot. A failure only
// delays the refresh until the next revalidation, so it just logs.
func (h *ProfileHandler) refreshSession(r *http.Request, sess *session.Session, user *clinicapi.User) {
	if err := h.store.UpdateUser(r.Context(), sess, user); err != nil {
		h.logger.Warn("session snapshot refresh failed", "user_id", user.ID, "error", err)
	}
}
