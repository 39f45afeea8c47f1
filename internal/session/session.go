package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no live session matches a token.
var ErrNotFound = errors.New("session not found")

// Session is what a successful password sign-in yields.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TTL is the remaining lifetime at now, zero once expired.
func (s Session) TTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	return max(0, s.ExpiresAt.Sub(now))
}

// Store keeps sessions keyed by access token.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, accessToken string) (Session, error)
	Delete(ctx context.Context, accessToken string) error
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// AccessToken returns the bearer of the request's session, "" if none.
func AccessToken(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.AccessToken
}
