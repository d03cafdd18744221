package handlers

import (
	"context"
	"net/http"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/queue"
	"github.com/pediclinic/portal/pkg/logging"
)

// patientAPI is the slice of the clinic API the patient views need.
type patientAPI interface {
	MyAppointments(ctx context.Context, token string) ([]clinicapi.Appointment, error)
	TodayQueue(ctx context.Context) ([]clinicapi.Appointment, error)
	CancelAppointment(ctx context.Context, token, id, reason string) error
}

// AppointmentsHandler serves the parent's own appointments and queue
// position.
type AppointmentsHandler struct {
	api               patientAPI
	watcher           refresher
	minutesPerPatient int
	logger            *logging.Logger
}

// NewAppointmentsHandler creates the handler. watcher may be nil.
func NewAppointmentsHandler(api patientAPI, watcher refresher, minutesPerPatient int, logger *logging.Logger) *AppointmentsHandler {
	if api == nil {
		panic("handlers: appointments API required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if minutesPerPatient <= 0 {
		minutesPerPatient = 15
	}
	return &AppointmentsHandler{api: api, watcher: watcher, minutesPerPatient: minutesPerPatient, logger: logger}
}

// List returns the signed-in parent's appointments.
// GET /api/appointments/mine
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	appts, err := h.api.MyAppointments(r.Context(), sess.Token)
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appts)
}

// Cancel cancels one of the parent's appointments; an optional reason is
// relayed to the clinic.
// DELETE /api/appointments/{id}
func (h *AppointmentsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing appointment id", http.StatusBadRequest)
		return
	}
	reason := r.URL.Query().Get("reason")

	if err := h.api.CancelAppointment(r.Context(), sess.Token, id, reason); err != nil {
		upstreamError(w, err)
		return
	}

	if h.watcher != nil {
		h.watcher.PollOnce(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Today shows the anonymous view of today's queue: current token and
// length, no personal position.
// GET /api/queue/today
func (h *AppointmentsHandler) Today(w http.ResponseWriter, r *http.Request) {
	today, err := h.api.TodayQueue(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queue.Project(today, "", h.minutesPerPatient))
}

// QueueStatus projects today's queue for the signed-in user.
// GET /api/queue/status
func (h *AppointmentsHandler) QueueStatus(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	today, err := h.api.TodayQueue(r.Context())
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queue.Project(today, sess.User.ID, h.minutesPerPatient))
}
