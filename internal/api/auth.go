package api

import (
	"context"

	"grocli/internal/types"
)

// Credentials is the login payload. The backend decides the role from the
// account, not the client.
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginResult carries the token and profile to persist.
type LoginResult struct {
	Token   string        `json:"token"`
	Profile types.Profile `json:"profile"`
}

// Login authenticates against the backend.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, "POST", "/api/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout invalidates the token server-side. Callers clear local state even
// when this fails.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "POST", "/api/auth/logout", nil, nil)
}

// RegisterDevice registers a push-notification device token for the
// logged-in account.
func (c *Client) RegisterDevice(ctx context.Context, deviceToken string) error {
	body := map[string]string{"deviceToken": deviceToken}
	return c.do(ctx, "POST", "/api/notifications/register", body, nil)
}
