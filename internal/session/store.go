package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/pediclinic/portal/internal/clinicapi"
	"github.com/pediclinic/portal/pkg/logging"
)

const sessionKeyPrefix = "session:"

// ErrNotFound is returned when a session id has no backing record.
var ErrNotFound = errors.New("session: not found")

// Session is the persisted authenticated identity: the opaque clinic API
// token plus a user snapshot that survives reloads.
type Session struct {
	ID        string          `json:"id"`
	Token     string          `json:"token"`
	User      *clinicapi.User `json:"user"`
	CreatedAt time.Time       `json:"created_at"`
}

// Result is the uniform outcome shape for auth actions. Handlers render it
// directly; no auth operation ever surfaces a Go error to the UI layer.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// authAPI is the slice of the clinic API the store needs.
type authAPI interface {
	Login(ctx context.Context, email, password string) (*clinicapi.AuthResponse, error)
	Register(ctx context.Context, req clinicapi.RegisterRequest) (*clinicapi.AuthResponse, error)
	SendOTP(ctx context.Context, phone string) (string, error)
	Me(ctx context.Context, token string) (*clinicapi.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, password string) error
	ChangePassword(ctx context.Context, token, current, next string) error
}

// Store is the single source of truth for "who is the current user".
type Store struct {
	redis  *redis.Client
	api    authAPI
	ttl    time.Duration
	logger *logging.Logger
	tracer trace.Tracer
}

// NewStore creates a Redis-backed session store.
func NewStore(redisClient *redis.Client, api authAPI, ttl time.Duration, logger *logging.Logger) *Store {
	if redisClient == nil {
		panic("session: redis client required")
	}
	if api == nil {
		panic("session: clinic API client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Store{
		redis:  redisClient,
		api:    api,
		ttl:    ttl,
		logger: logger,
		tracer: otel.Tracer("portal.internal.session"),
	}
}

// Login authenticates against the clinic API and persists a session on
// success. The returned session is nil unless Result.Success.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, Result) {
	ctx, span := s.tracer.Start(ctx, "session.login")
	defer span.End()

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		return nil, failure(err, "Login failed")
	}
	sess, err := s.create(ctx, resp.Token, &resp.User)
	if err != nil {
		span.RecordError(err)
		return nil, Result{Success: false, Error: "server error"}
	}
	s.logger.Info("session created", "user_id", resp.User.ID, "role", resp.User.Role)
	return sess, Result{Success: true}
}

// Register creates an account (OTP-gated) and persists a session.
func (s *Store) Register(ctx context.Context, req clinicapi.RegisterRequest) (*Session, Result) {
	ctx, span := s.tracer.Start(ctx, "session.register")
	defer span.End()

	resp, err := s.api.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, failure(err, "Registration failed")
	}
	sess, err := s.create(ctx, resp.Token, &resp.User)
	if err != nil {
		span.RecordError(err)
		return nil, Result{Success: false, Error: "server error"}
	}
	s.logger.Info("session created via registration", "user_id", resp.User.ID)
	return sess, Result{Success: true}
}

// SendOTP triggers a server-side OTP dispatch to the phone.
func (s *Store) SendOTP(ctx context.Context, phone string) Result {
	msg, err := s.api.SendOTP(ctx, phone)
	if err != nil {
		return failure(err, "Failed to send OTP")
	}
	return Result{Success: true, Message: msg}
}

// ForgotPassword starts a password reset for the email.
func (s *Store) ForgotPassword(ctx context.Context, email string) Result {
	msg, err := s.api.ForgotPassword(ctx, email)
	if err != nil {
		return failure(err, "Failed to send reset link")
	}
	return Result{Success: true, Message: msg}
}

// ResetPassword completes a reset using the emailed token.
func (s *Store) ResetPassword(ctx context.Context, resetToken, password string) Result {
	if err := s.api.ResetPassword(ctx, resetToken, password); err != nil {
		return failure(err, "Password reset failed")
	}
	return Result{Success: true}
}

// ChangePassword rotates the password for an authenticated session.
func (s *Store) ChangePassword(ctx context.Context, sess *Session, current, next string) Result {
	if err := s.api.ChangePassword(ctx, sess.Token, current, next); err != nil {
		return failure(err, "Password change failed")
	}
	return Result{Success: true}
}

// Logout drops the persisted session. No network call is made; the clinic
// API token is simply forgotten.
func (s *Store) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.redis.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		s.logger.Warn("session delete failed", "session_id", sessionID, "error", err)
	}
}

// UpdateUser overwrites the persisted user snapshot. Called after profile
// or child mutations return the server's canonical user object.
func (s *Store) UpdateUser(ctx context.Context, sess *Session, user *clinicapi.User) error {
	sess.User = user
	if err := s.persist(ctx, sess); err != nil {
		return fmt.Errorf("session: update user: %w", err)
	}
	return nil
}

// Load fetches a session by id.
func (s *Store) Load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &sess, nil
}

// Revalidate checks the stored token against the server and refreshes the
// user snapshot. A server-confirmed invalid token destroys the session; a
// transport failure keeps the stale snapshot so a flaky network never logs
// anyone out.
func (s *Store) Revalidate(ctx context.Context, sess *Session) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "session.revalidate")
	defer span.End()

	user, err := s.api.Me(ctx, sess.Token)
	if err != nil {
		if clinicapi.IsUnauthorized(err) {
			s.logger.Info("session token rejected by server", "session_id", sess.ID)
			s.Logout(ctx, sess.ID)
			return nil, ErrNotFound
		}
		s.logger.Warn("session revalidation unreachable, keeping stale user", "session_id", sess.ID, "error", err)
		return sess, nil
	}
	sess.User = user
	if err := s.persist(ctx, sess); err != nil {
		s.logger.Warn("session refresh persist failed", "session_id", sess.ID, "error", err)
	}
	return sess, nil
}

func (s *Store) create(ctx context.Context, token string, user *clinicapi.User) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) persist(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}
	return nil
}

// failure maps an error to the uniform result. Server-reported messages
// pass through verbatim; transport failures collapse to a generic message.
func failure(err error, fallback string) Result {
	if apiErr, ok := clinicapi.IsAPIError(err); ok {
		msg := apiErr.Msg
		if msg == "" {
			msg = fallback
		}
		return Result{Success: false, Error: msg}
	}
	return Result{Success: false, Error: "server error"}
}
