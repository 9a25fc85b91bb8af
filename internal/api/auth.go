package api

import (
	"context"
	"net/http"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// authPayload is the data shape of /auth/register and /auth/login responses.
// The backend may also return token material here; the client relies on the
// session cookie alone.
type authPayload struct {
	User domain.SessionUser `json:"user"`
}

// Register creates a new account and opens a session for it.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.SessionUser, error) {
	var payload authPayload
	if err := c.do(ctx, "auth.register", http.MethodPost, "/auth/register", req, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

// Login authenticates with email and password. Format validation is the
// server's job; the client only forwards the credentials.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.SessionUser, error) {
	var payload authPayload
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", req, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

// Logout terminates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "auth.logout", http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser returns the identity bound to the session cookie, or an
// APIError with status 401 when the session is absent or expired.
func (c *Client) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	var user domain.SessionUser
	if err := c.do(ctx, "auth.me", http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
