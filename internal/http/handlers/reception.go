package handlers

import (
	"context"
	"net/http"

	"github.com/pediclinic/portal/internal/booking"
	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/pkg/logging"
)

// receptionAPI is the slice of the clinic API the front desk needs.
type receptionAPI interface {
	TodayQueue(ctx context.Context) ([]clinicapi.Appointment, error)
	QuickRegister(ctx context.Context, token string, req clinicapi.QuickRegisterRequest) error
	SearchUsers(ctx context.Context, token, query string) ([]clinicapi.User, error)
	CheckIn(ctx context.Context, token, id string) error
	Complete(ctx context.Context, token, id string) error
}

// ReceptionHandler serves the front-desk workflow: today's schedule,
// walk-in registration and visit state transitions.
type ReceptionHandler struct {
	api     receptionAPI
	booking *booking.Service
	watcher refresher
	logger  *logging.Logger
}

// NewReceptionHandler creates the reception handler. watcher may be nil.
func NewReceptionHandler(api receptionAPI, bookingSvc *booking.Service, watcher refresher, logger *logging.Logger) *ReceptionHandler {
	if api == nil || bookingSvc == nil {
		panic("handlers: reception requires API and booking service")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReceptionHandler{api: api, booking: bookingSvc, watcher: watcher, logger: logger}
}

// Today returns the day's schedule.
// GET /api/reception/today
func (h *ReceptionHandler) Today(w http.ResponseWriter, r *http.Request) {
	appts, err := h.api.TodayQueue(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// QuickRegister creates a walk-in family account at the desk.
// POST /api/reception/quick-register
func (h *ReceptionHandler) QuickRegister(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req clinicapi.QuickRegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ParentName == "" || req.ParentPhone == "" {
		jsonError(w, "parent name and phone are required", http.StatusBadRequest)
		return
	}

	if err := h.api.QuickRegister(r.Context(), sess.Token, req); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

// Search finds registered families by name or phone.
// GET /api/reception/users?q=
func (h *ReceptionHandler) Search(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []clinicapi.User{})
		return
	}

	users, err := h.api.SearchUsers(r.Context(), sess.Token, query)
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Book books on behalf of a searched patient.
// POST /api/reception/book
func (h *ReceptionHandler) Book(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req struct {
		booking.Request
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		jsonError(w, "missing patient", http.StatusBadRequest)
		return
	}

	appt, err := h.booking.BookFor(r.Context(), sess, req.UserID, req.Request)
	if err != nil {
		if booking.IsValidation(err) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		upstreamError(w, err)
		return
	}

	if h.watcher != nil {
		h.watcher.PollOnce(r.Context())
	}
	writeJSON(w, http.StatusCreated, appt)
}

// CheckIn marks a patient as arrived.
// PUT /api/reception/appointments/{id}/checkin
func (h *ReceptionHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.api.CheckIn)
}

// Complete marks a visit as finished, advancing the queue.
// PUT /api/reception/appointments/{id}/complete
func (h *ReceptionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.api.Complete)
}

func (h *ReceptionHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, token, id string) error) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing appointment id", http.StatusBadRequest)
		return
	}

	if err := apply(r.Context(), sess.Token, id); err != nil {
		upstreamError(w, err)
		return
	}

	if h.watcher != nil {
		h.watcher.PollOnce(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
