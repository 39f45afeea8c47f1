package remote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/angelcm/horizon-crm/internal/apperr"
	"github.com/angelcm/horizon-crm/internal/session"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn exchanges email and password for a session. A rejected sign-in
// carries the backend's message unchanged.
func (c *Client) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	if email == "" || password == "" {
		return session.Session{}, apperr.New(apperr.CodeValidation, "email and password are required")
	}
	var tr tokenResponse
	body := map[string]string{"email": email, "password": password}
	err := c.send(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", nil, body, &tr)
	if err != nil {
		// 4xx from the auth endpoint means bad credentials, not an outage
		var se *StatusError
		if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
			return session.Session{}, &apperr.Error{Code: apperr.CodeUnauthorized, Message: apperr.MessageOf(err), Err: se}
		}
		return session.Session{}, err
	}
	if tr.AccessToken == "" {
		return session.Session{}, apperr.New(apperr.CodeRemote, "sign-in response carried no access token")
	}

	s := session.Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
	}
	switch {
	case tr.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tr.ExpiresAt, 0)
	case tr.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return s, nil
}

// SignOut revokes the session's token on the backend.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx = session.WithSession(ctx, session.Session{AccessToken: accessToken})
	return c.send(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil, nil, nil)
}
