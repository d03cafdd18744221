package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/session"
)

// sessionRequest builds a request carrying an authenticated session.
func sessionRequest(t *testing.T, method, target string, body any, user *clinicapi.User) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if user != nil {
		sess := &session.Session{ID: "sess-1", Token: "tok-1", User: user}
		req = req.WithContext(middleware.WithSession(req.Context(), sess))
	}
	return req
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func patientUser() *clinicapi.User {
	return &clinicapi.User{
		ID:   "u1",
		Name: "Asha Rao",
		Role: clinicapi.RolePatient,
		Children: []clinicapi.Child{
			{ID: "c1", Name: "Aarav", Age: 2},
		},
	}
}
