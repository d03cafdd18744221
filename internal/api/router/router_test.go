package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/internal/session"
)

type roleAuthAPI struct {
	user clinicapi.User
}

func (f *roleAuthAPI) Login(ctx context.Context, email, password string) (*clinicapi.AuthResponse, error) {
	return &clinicapi.AuthResponse{Token: "tok", User: f.user}, nil
}

func (f *roleAuthAPI) Register(ctx context.Context, req clinicapi.RegisterRequest) (*clinicapi.AuthResponse, error) {
	return &clinicapi.AuthResponse{Token: "tok", User: f.user}, nil
}

func (f *roleAuthAPI) SendOTP(ctx context.Context, phone string) (string, error) { return "", nil }

func (f *roleAuthAPI) Me(ctx context.Context, token string) (*clinicapi.User, error) {
	u := f.user
	return &u, nil
}

func (f *roleAuthAPI) ForgotPassword(ctx context.Context, email string) (string, error) {
	return "", nil
}

func (f *roleAuthAPI) ResetPassword(ctx context.Context, resetToken, password string) error {
	return nil
}

func (f *roleAuthAPI) ChangePassword(ctx context.Context, token, current, next string) error {
	return nil
}

// portalFor builds a minimal router plus a valid session cookie for a
// user with the given role.
func portalFor(t *testing.T, role string) (http.Handler, *http.Cookie) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := &roleAuthAPI{user: clinicapi.User{ID: "u1", Role: role, Name: "Test"}}
	store := session.NewStore(client, api, time.Hour, nil)
	codec, err := session.NewCookieCodec("portal_session", "test-secret", time.Hour, false)
	require.NoError(t, err)

	handler := New(&Config{SessionCodec: codec, SessionStore: store})

	var cookie *http.Cookie
	if role != "" {
		sess, res := store.Login(context.Background(), "a@b.c", "pw")
		require.True(t, res.Success)
		rec := httptest.NewRecorder()
		require.NoError(t, codec.Write(rec, sess.ID))
		cookie = rec.Result().Cookies()[0]
	}
	return handler, cookie
}

func get(handler http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAnonymousStaffPageRedirectsToLogin(t *testing.T) {
	handler, _ := portalFor(t, "")

	rec := get(handler, "/reception", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = get(handler, "/admin", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestReceptionistOnPatientPageLandsOnReception(t *testing.T) {
	handler, cookie := portalFor(t, clinicapi.RoleReceptionist)

	rec := get(handler, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/reception", rec.Header().Get("Location"))
}

func TestAdminOnPatientPageLandsOnAdmin(t *testing.T) {
	handler, cookie := portalFor(t, clinicapi.RoleAdmin)

	rec := get(handler, "/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
}

func TestPatientReachesDashboard(t *testing.T) {
	handler, cookie := portalFor(t, clinicapi.RolePatient)

	rec := get(handler, "/dashboard", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminMayUseReceptionPage(t *testing.T) {
	handler, cookie := portalFor(t, clinicapi.RoleAdmin)

	rec := get(handler, "/reception", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthIsPublic(t *testing.T) {
	handler, _ := portalFor(t, "")

	rec := get(handler, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
