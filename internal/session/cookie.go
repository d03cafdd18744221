package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieCodec signs session ids into browser cookies so a tampered cookie
// never reaches Redis.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCookieCodec builds a codec. secret must be non-empty.
func NewCookieCodec(name, secret string, ttl time.Duration, secure bool) (*CookieCodec, error) {
	if secret == "" {
		return nil, fmt.Errorf("session: cookie signing secret required")
	}
	if name == "" {
		name = "portal_session"
	}
	return &CookieCodec{name: name, secret: []byte(secret), ttl: ttl, secure: secure}, nil
}

// Write sets the signed session cookie on the response.
func (c *CookieCodec) Write(w http.ResponseWriter, sessionID string) error {
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return fmt.Errorf("session: sign cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read extracts and verifies the session id from the request cookie.
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", fmt.Errorf("session: no cookie: %w", err)
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("session: invalid cookie")
	}
	return claims.Subject, nil
}
