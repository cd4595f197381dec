/*
Package auth verifies who is calling.

PURPOSE:
  The booking core consumes identity as a precondition: a caller either has a
  verified session or the operation is rejected. This package turns a bearer
  token into a Session on the request context and nothing more. Sign-up,
  login and password handling live elsewhere.

FLOW:
  Authorization: Bearer <jwt>  ->  Authenticate middleware  ->  Provider.Parse
  -> WithSession(ctx)  ->  booking.Service reads SessionFrom(ctx)

  Missing or invalid tokens leave the request anonymous; the orchestrator
  decides whether the operation needs a session.

SEE ALSO:
  - booking/service.go: Enforces authentication and ownership
  - api/server.go: Mounts the middleware
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/generic"
)

// =============================================================================
// SESSION
// =============================================================================

type Session struct {
	UserID generic.GuestID `json:"user_id"`
	Email  string          `json:"email"`
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the caller's session, or false when anonymous.
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.UserID > 0
}

// RequireSession is SessionFrom that fails with *generic.AuthenticationError.
func RequireSession(ctx context.Context, reason string) (Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return Session{}, &generic.AuthenticationError{Reason: reason}
	}
	return s, nil
}

// =============================================================================
// TOKENS - HS256
// =============================================================================

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider issues and verifies tokens with a shared secret.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewProvider(secret string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for issuing and expiry checks.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Issue signs a token for the guest.
func (p *Provider) Issue(guestID generic.GuestID, email string) (string, error) {
	now := p.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   guestID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.secret)
}

// Parse validates an Authorization header value ("Bearer <token>" or the
// bare token) and returns the session it carries.
func (p *Provider) Parse(header string) (Session, error) {
	tokenStr := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return Session{}, ErrMissingToken
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Session{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Session{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return Session{UserID: generic.GuestID(id), Email: claims.Email}, nil
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// Authenticate attaches the session of a valid bearer token to the request
// context. Requests without a valid token continue anonymously.
func Authenticate(p *Provider, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			s, err := p.Parse(header)
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Debug("ignoring invalid bearer token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
