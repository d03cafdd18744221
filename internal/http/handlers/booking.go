package handlers

import (
	"context"
	"net/http"

	"github.com/pediclinic/portal/internal/booking"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/pkg/logging"
)

// refresher lets a handler trigger an immediate queue re-poll after it
// changes the schedule.
type refresher interface {
	PollOnce(ctx context.Context)
}

// BookingHandler serves slot availability and takes bookings.
type BookingHandler struct {
	svc     *booking.Service
	watcher refresher
	logger  *logging.Logger
}

// NewBookingHandler creates the booking handler. watcher may be nil.
func NewBookingHandler(svc *booking.Service, watcher refresher, logger *logging.Logger) *BookingHandler {
	if svc == nil {
		panic("handlers: booking service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{svc: svc, watcher: watcher, logger: logger}
}

// Categories lists the visit reasons; public.
// GET /api/booking/categories
func (h *BookingHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": booking.Categories})
}

// Availability returns the slot grid for a date; public.
// GET /api/booking/slots?date=2006-01-02
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	slots, err := h.svc.Availability(r.Context(), date)
	if err != nil {
		if booking.IsValidation(err) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

// Book creates an appointment for the signed-in parent.
// POST /api/booking
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req booking.Request
	if !decodeBody(w, r, &req) {
		return
	}

	appt, err := h.svc.Book(r.Context(), sess, req)
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
