package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/ingest"
	"github.com/angelcm/horizon-crm/internal/session"
)

// Authenticator signs users in and out against the backend's auth service.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (session.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	UserID      string        `json:"userId"`
	Email       string        `json:"email,omitempty"`
	Loaded      ingest.Result `json:"loaded"`
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (a *api) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	s, err := a.auth.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	a.m.ObserveLogin(err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if filled, perr := a.tokens.Apply(s); perr == nil {
		s = filled
	} else if s.UserID == "" || a.tokens.Verifies() {
		a.writeError(w, r, &apperr.Error{Code: apperr.CodeUnauthorized, Message: "access token rejected", Err: perr})
		return
	}
	if err := a.sessions.Save(r.Context(), s); err != nil {
		a.writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "could not store session"))
		return
	}

	ctx := session.WithSession(r.Context(), s)
	res, err := a.crm.LoadSession(ctx, s.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Info("signed in", slog.String("user_id", s.UserID), slog.Int("leads", res.Leads))
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
		UserID:      s.UserID,
		Email:       s.Email,
		Loaded:      res,
	})
}

// logout revokes the token upstream, then forgets the session locally. An
// upstream failure does not keep the user signed in here.
func (a *api) logout(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	if err := a.auth.SignOut(r.Context(), s.AccessToken); err != nil {
		a.log.Warn("sign-out upstream failed", slog.String("user_id", s.UserID), slog.String("err", err.Error()))
	}
	if err := a.sessions.Delete(r.Context(), s.AccessToken); err != nil {
		a.writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "could not drop session"))
		return
	}
	a.crm.EndSession(s.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// requireSession resolves the bearer token to a stored session and puts it
// on the request context.
func (a *api) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			a.writeError(w, r, apperr.New(apperr.CodeUnauthorized, "missing bearer token"))
			return
		}
		if a.tokens.Verifies() {
			if _, err := a.tokens.Parse(tok); err != nil {
				a.writeError(w, r, &apperr.Error{Code: apperr.CodeUnauthorized, Message: "invalid access token", Err: err})
				return
			}
		}
		s, err := a.sessions.Get(r.Context(), tok)
		if errors.Is(err, session.ErrNotFound) {
			a.writeError(w, r, apperr.New(apperr.CodeUnauthorized, "session expired, please sign in again"))
			return
		}
		if err != nil {
			a.writeError(w, r, apperr.Wrap(err, apperr.CodeInternal, "session lookup failed"))
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
	})
}

func userID(r *http.Request) string {
	s, _ := session.FromContext(r.Context())
	return s.UserID
}
