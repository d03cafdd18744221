package handlers

import (
	"context"
	"net/http"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/pkg/logging"
)

// adminAPI is the slice of the clinic API the admin dashboard needs.
type adminAPI interface {
	AllAppointments(ctx context.Context, token string) ([]clinicapi.Appointment, error)
	CancelAppointment(ctx context.Context, token, id, reason string) error
	Reschedule(ctx context.Context, token, id string, req clinicapi.RescheduleRequest) error
}

// AdminHandler serves the clinic-wide appointment views.
type AdminHandler struct {
	api     adminAPI
	watcher refresher
	logger  *logging.Logger
}

// NewAdminHandler creates the admin handler. watcher may be nil.
func NewAdminHandler(api adminAPI, watcher refresher, logger *logging.Logger) *AdminHandler {
	if api == nil {
		panic("handlers: admin API required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{api: api, watcher: watcher, logger: logger}
}

// List returns every appointment in the clinic.
// GET /api/admin/appointments
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	appts, err := h.api.AllAppointments(r.Context(), sess.Token)
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// Cancel cancels any appointment with a reason the patient will see.
// DELETE /api/admin/appointments/{id}
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing appointment id", http.StatusBadRequest)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.api.CancelAppointment(r.Context(), sess.Token, id, req.Reason); err != nil {
		upstreamError(w, err)
		return
	}

	if h.watcher != nil {
		h.watcher.PollOnce(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Reschedule moves an appointment and relays a message to the patient.
// PUT /api/admin/appointments/{id}
func (h *AdminHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing appointment id", http.StatusBadRequest)
		return
	}
	var req clinicapi.RescheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Date == "" || req.Time == "" {
		jsonError(w, "date and time are required", http.StatusBadRequest)
		return
	}

	if err := h.api.Reschedule(r.Context(), sess.Token, id, req); err != nil {
		upstreamError(w, err)
		return
	}

	if h.watcher != nil {
		h.watcher.PollOnce(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
