package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/pkg/logging"
)

type fakeAuthAPI struct {
	loginResp *clinicapi.AuthResponse
	loginErr  error
	meUser    *clinicapi.User
	meErr     error
	otpMsg    string
	otpErr    error
	meCalls   int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*clinicapi.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(ctx context.Context, req clinicapi.RegisterRequest) (*clinicapi.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) SendOTP(ctx context.Context, phone string) (string, error) {
	return f.otpMsg, f.otpErr
}

func (f *fakeAuthAPI) Me(ctx context.Context, token string) (*clinicapi.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeAuthAPI) ForgotPassword(ctx context.Context, email string) (string, error) {
	return "reset sent", nil
}

func (f *fakeAuthAPI) ResetPassword(ctx context.Context, resetToken, password string) error {
	return nil
}

func (f *fakeAuthAPI) ChangePassword(ctx context.Context, token, current, next string) error {
	return nil
}

func newTestStore(t *testing.T, api authAPI) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, api, time.Hour, logging.Default())
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &clinicapi.AuthResponse{
		Token: "tok-1",
		User:  clinicapi.User{ID: "u1", Name: "Asha", Role: clinicapi.RolePatient},
	}}
	store := newTestStore(t, api)

	sess, res := store.Login(context.Background(), "a@example.com", "pw")
	require.True(t, res.Success)
	require.NotNil(t, sess)

	loaded, err := store.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", loaded.Token)
	assert.Equal(t, "Asha", loaded.User.Name)
}

func TestLoginFailureIsUniformResult(t *testing.T) {
	api := &fakeAuthAPI{loginErr: &clinicapi.APIError{StatusCode: 400, Msg: "Invalid credentials"}}
	store := newTestStore(t, api)

	sess, res := store.Login(context.Background(), "a@example.com", "bad")
	assert.Nil(t, sess)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Error)
}

func TestLoginTransportFailureIsGeneric(t *testing.T) {
	api := &fakeAuthAPI{loginErr: errors.New("dial tcp: connection refused")}
	store := newTestStore(t, api)

	_, res := store.Login(context.Background(), "a@example.com", "pw")
	assert.False(t, res.Success)
	assert.Equal(t, "server error", res.Error)
}

func TestLogoutRemovesSession(t *testing.T) {
	api := &fakeAuthAPI{loginResp: &clinicapi.AuthResponse{Token: "t", User: clinicapi.User{ID: "u1"}}}
	store := newTestStore(t, api)

	sess, _ := store.Login(context.Background(), "a@example.com", "pw")
	store.Logout(context.Background(), sess.ID)

	_, err := store.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevalidateUnauthorizedClearsSession(t *testing.T) {
	api := &fakeAuthAPI{
		loginResp: &clinicapi.AuthResponse{Token: "t", User: clinicapi.User{ID: "u1"}},
		meErr:     &clinicapi.APIError{StatusCode: http.StatusUnauthorized, Msg: "Token is not valid"},
	}
	store := newTestStore(t, api)
	sess, _ := store.Login(context.Background(), "a@example.com", "pw")

	revalidated, err := store.Revalidate(context.Background(), sess)
	assert.Nil(t, revalidated)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevalidateNetworkErrorKeepsStaleUser(t *testing.T) {
	api := &fakeAuthAPI{
		loginResp: &clinicapi.AuthResponse{Token: "t", User: clinicapi.User{ID: "u1", Name: "Stale"}},
		meErr:     errors.New("dial tcp: i/o timeout"),
	}
	store := newTestStore(t, api)
	sess, _ := store.Login(context.Background(), "a@example.com", "pw")

	revalidated, err := store.Revalidate(context.Background(), sess)
	require.NoError(t, err)
	require.NotNil(t, revalidated)
	assert.Equal(t, "Stale", revalidated.User.Name)
}

func TestRevalidateRefreshesSnapshot(t *testing.T) {
	api := &fakeAuthAPI{
		loginResp: &clinicapi.AuthResponse{Token: "t", User: clinicapi.User{ID: "u1", Name: "Old"}},
		meUser:    &clinicapi.User{ID: "u1", Name: "Fresh"},
	}
	store := newTestStore(t, api)
	sess, _ := store.Login(context.Background(), "a@example.com", "pw")

	revalidated, err := store.Revalidate(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", revalidated.User.Name)

	loaded, err := store.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh", loaded.User.Name)
}

func TestSendOTPForwardsServerMessage(t *testing.T) {
	store := newTestStore(t, &fakeAuthAPI{otpMsg: "OTP sent to phone"})
	res := store.SendOTP(context.Background(), "9876543210")
	assert.True(t, res.Success)
	assert.Equal(t, "OTP sent to phone", res.Message)
}

func TestCookieCodecRoundTrip(t *testing.T) {
	codec, err := NewCookieCodec("portal_session", "secret-key", time.Hour, false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Write(rec, "sess-123"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	id, err := codec.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "sess-123", id)
}

func TestCookieCodecRejectsTampering(t *testing.T) {
	codec, _ := NewCookieCodec("portal_session", "secret-key", time.Hour, false)
	other, _ := NewCookieCodec("portal_session", "different-key", time.Hour, false)

	rec := httptest.NewRecorder()
	require.NoError(t, other.Write(rec, "sess-123"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	if _, err := codec.Read(req); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}
