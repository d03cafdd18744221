package handlers

import (
	"net/http"

	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/notifications"
	"github.com/pediclinic/portal/pkg/logging"
)

// NotificationsHandler serves the bell menu.
type NotificationsHandler struct {
	svc    *notifications.Service
	logger *logging.Logger
}

// NewNotificationsHandler creates the notifications handler.
func NewNotificationsHandler(svc *notifications.Service, logger *logging.Logger) *NotificationsHandler {
	if svc == nil {
		panic("handlers: notifications service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationsHandler{svc: svc, logger: logger}
}

// List returns the user's notifications with the unread count.
// GET /api/notifications
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	inbox, err := h.svc.Inbox(r.Context(), sess.User.ID, sess.Token)
	if err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inbox)
}

// MarkRead flags one notification read; repeat calls are no-ops.
// PUT /api/notifications/{id}/read
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	id := pathParam(r, "id")
	if id == "" {
		jsonError(w, "missing notification id", http.StatusBadRequest)
		return
	}

	if err := h.svc.MarkRead(r.Context(), sess.User.ID, sess.Token, id); err != nil {
		upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
