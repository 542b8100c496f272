package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSession is returned when the session token is invalid
	ErrInvalidSession = errors.New("invalid session token")
	// ErrExpiredSession is returned when the session token has expired
	ErrExpiredSession = errors.New("session token has expired")
)

// SessionClaims carries the authenticated username inside the token
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies session tokens. A token is the
// session: the login route issues it and the WebSocket connect presents
// it to establish the caller's username.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a session token for the given username
func (m *SessionManager) Issue(username string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "online-chat",
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates a session token and returns the username it was
// issued for.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredSession
		}
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Username == "" {
		return "", ErrInvalidSession
	}

	return claims.Username, nil
}
