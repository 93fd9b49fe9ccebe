// Package session binds an authenticated account to a client through a
// signed cookie, optionally backed by a server-side store.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-deposit-api/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no session")

// Store keeps the server-side binding from session id to account id.
type Store interface {
	Save(ctx context.Context, sid string, accountID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sid string) (int64, error)
}

type Claims struct {
	AccountID int64 `json:"account_id"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
	// Store is optional. Without it the signed cookie alone identifies the session.
	Store Store
}

type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	store      Store
	now        func() time.Time
}

func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	return &Manager{
		secret:     []byte(opts.Secret),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		store:      opts.Store,
		now:        time.Now,
	}
}

// Login starts a new session for accountID and writes the session cookie.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, accountID int64) error {
	sid := uuid.NewString()
	now := m.now()

	if m.store != nil {
		if err := m.store.Save(ctx, sid, accountID, m.ttl); err != nil {
			return fmt.Errorf("could not store session: %w", err)
		}
	}

	claims := &Claims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// CurrentAccountID returns the account bound to the request's session.
func (m *Manager) CurrentAccountID(r *http.Request) (int64, bool) {
	tokenString := m.tokenFromRequest(r)
	if tokenString == "" {
		return 0, false
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.AccountID <= 0 {
		return 0, false
	}

	if m.store != nil {
		bound, err := m.store.Lookup(r.Context(), claims.ID)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				logger.Log.WithError(err).Error("Failed to look up session")
			}
			return 0, false
		}
		if bound != claims.AccountID {
			return 0, false
		}
	}
	return claims.AccountID, true
}

type contextKey string

const accountIDKey contextKey = "accountID"

func WithAccountID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, accountIDKey, accountID)
}

func AccountIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}

// LoadSession puts the session's account id into the request context when
// the request carries a valid session. Requests without one pass through
// unchanged; handlers decide how to reject them.
func (m *Manager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if accountID, ok := m.CurrentAccountID(r); ok {
			r = r.WithContext(WithAccountID(r.Context(), accountID))
		}
		next.ServeHTTP(w, r)
	})
}
