package handlers

import (
	"net/http"

	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/notifications"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/pkg/logging"
)

// AuthHandler covers login, registration and account recovery.
type AuthHandler struct {
	store  *session.Store
	codec  *session.CookieCodec
	inbox  *notifications.Service
	hub    pushHub
	logger *logging.Logger
}

// pushHub is the slice of the push hub auth needs on logout.
type pushHub interface {
	Disconnect(sessionID string)
}

// NewAuthHandler creates the auth handler. hub and inbox may be nil in
// tests.
func NewAuthHandler(store *session.Store, codec *session.CookieCodec, inbox *notifications.Service, hub pushHub, logger *logging.Logger) *AuthHandler {
	if store == nil || codec == nil {
		panic("handlers: auth requires store and codec")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{store: store, codec: codec, inbox: inbox, hub: hub, logger: logger}
}

// Login authenticates and sets the session cookie.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sess, res := h.store.Login(r.Context(), req.Email, req.Password)
	if !res.Success {
		writeJSON(w, http.StatusUnauthorized, res)
		return
	}
	if err := h.codec.Write(w, sess.ID); err != nil {
		h.logger.Error("write session cookie failed", "error", err)
		jsonError(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    sess.User,
		"home":    middleware.HomeFor(sess.User.Role),
	})
}

// Register creates a parent account after OTP verification.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone"`
		OTP      string `json:"otp"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sess, res := h.store.Register(r.Context(), registerRequest(req.Name, req.Email, req.Password, req.Phone, req.OTP))
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, res)
		return
	}
	if err := h.codec.Write(w, sess.ID); err != nil {
		h.logger.Error("write session cookie failed", "error", err)
		jsonError(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    sess.User,
		"home":    middleware.HomeFor(sess.User.Role),
	})
}

// SendOTP issues a registration OTP to a phone number.
// POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res := h.store.SendOTP(r.Context(), req.Phone)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

// Logout revokes the session and clears the cookie. Always succeeds.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromRequest(r); ok {
		h.store.Logout(r.Context(), sess.ID)
		if h.hub != nil {
			h.hub.Disconnect(sess.ID)
		}
		if h.inbox != nil && sess.User != nil {
			h.inbox.Forget(sess.User.ID)
		}
	}
	h.codec.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current user snapshot.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	writeJSON(w, http.StatusOK, sess.User)
}

// ForgotPassword requests a reset link for an email.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res := h.store.ForgotPassword(r.Context(), req.Email)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

// ResetPassword sets a new password using an emailed reset token.
// POST /api/auth/reset-password/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "token")
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res := h.store.ResetPassword(r.Context(), token, req.Password)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

// ChangePassword rotates the signed-in user's password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromRequest(r)
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	res := h.store.ChangePassword(r.Context(), sess, req.CurrentPassword, req.NewPassword)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}
