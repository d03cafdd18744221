// Package handlers holds the portal's HTTP endpoints. Every mutation
// follows the same shape: forward to the clinic API, surface its error
// message verbatim on failure, return the refreshed state on success.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pediclinic/portal/internal/clinicapi"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// jsonError matches the clinic API's error body shape so the front end
// reads one format everywhere.
func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

// upstreamError relays a clinic API failure. API errors keep their
// status and message verbatim; transport failures collapse to 502.
func upstreamError(w http.ResponseWriter, err error) {
	if apiErr, ok := clinicapi.IsAPIError(err); ok {
		jsonError(w, apiErr.Msg, apiErr.StatusCode)
		return
	}
	jsonError(w, "server error", http.StatusBadGateway)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func pathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func registerRequest(name, email, password, phone, otp string) clinicapi.RegisterRequest {
	return clinicapi.RegisterRequest{Name: name, Email: email, Password: password, Phone: phone, OTP: otp}
}
