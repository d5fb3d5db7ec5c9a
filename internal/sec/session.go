package sec

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie holding the signed session token.
const SessionCookie = "session"

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// ErrNoSession is returned by [Sessions.Resolve] when the request carries no
// session, or a session that is expired, malformed, or improperly signed. All
// of these resolve to "no authenticated user" rather than a server failure.
var ErrNoSession = errors.New("no valid session")

// sessionClaims is the payload signed into the session token.
type sessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Sessions issues and resolves signed session cookies. The zero value is not
// usable; construct with [NewSessions].
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session manager signing with the given secret key.
func NewSessions(secretKey string) Sessions {
	return Sessions{
		secret: []byte(secretKey),
		ttl:    DefaultSessionTTL,
	}
}

// Issue returns a cookie holding a freshly signed session for the given user.
func (s Sessions) Issue(userID int64) (*http.Cookie, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns a cookie that expires any existing session on the client.
func (s Sessions) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Resolve extracts the user ID from the request's session cookie. It returns
// [ErrNoSession] if the cookie is absent or its token does not verify.
func (s Sessions) Resolve(req *http.Request) (int64, error) {
	cookie, err := req.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return 0, ErrNoSession
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return 0, ErrNoSession
	}
	return claims.UserID, nil
}

// NewSecretKey generates a random hex-encoded key suitable for secret_key in
// a fresh configuration file.
func NewSecretKey() string {
	key := make([]byte, 32)
	_, _ = rand.Read(key) // never fails per crypto/rand docs
	return hex.EncodeToString(key)
}
