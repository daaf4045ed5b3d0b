package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Login calls POST /auth/login and returns the bearer token with the account summary.
func (c *MovieClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	if err := shared.Validate(creds); err != nil {
		return nil, err
	}

	var result models.AuthResult
	req := request{method: http.MethodPost, path: "/auth/login", body: creds}
	if err := c.getJSON(ctx, req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: login response carried no token", shared.ErrAuthFailed)
	}
	if result.User.Username == "" {
		result.User.Username = creds.Username
	}
	return &result, nil
}

// Register calls POST /auth/register and returns the server's confirmation message.
func (c *MovieClient) Register(ctx context.Context, reg models.Registration) (string, error) {
	if err := shared.Validate(reg); err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}
	req := request{method: http.MethodPost, path: "/auth/register", body: reg}
	if err := c.getJSON(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Registered successfully"
	}
	return resp.Message, nil
}

// Logout calls POST /auth/logout with the current bearer token.
func (c *MovieClient) Logout(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", auth: true})
	return err
}

// Profile calls GET /users/me.
func (c *MovieClient) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.getJSON(ctx, request{method: http.MethodGet, path: "/users/me", auth: true}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile calls PUT /users/me and returns the stored profile.
func (c *MovieClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Profile, error) {
	if err := shared.Validate(update); err != nil {
		return nil, err
	}

	var profile models.Profile
	req := request{method: http.MethodPut, path: "/users/me", body: update, auth: true}
	if err := c.getJSON(ctx, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
